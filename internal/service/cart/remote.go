package cart

import (
	"context"
	"strings"

	"clothcycle/internal/domain"
	"clothcycle/internal/repository/cartitem"
)

// remoteStrategy persists lines as durable rows scoped to one user id.
type remoteStrategy struct {
	repo   cartitem.Repository
	userID string
}

// NewRemoteStrategy returns the durable backing store for an authenticated
// user.
func NewRemoteStrategy(repo cartitem.Repository, userID string) Strategy {
	return &remoteStrategy{repo: repo, userID: userID}
}

func (s *remoteStrategy) Load(ctx context.Context) ([]domain.CartLine, error) {
	return s.repo.ListByUser(ctx, s.userID)
}

func (s *remoteStrategy) Add(ctx context.Context, in domain.CartLineInput, quantity int) (*domain.CartLine, error) {
	return s.repo.Insert(ctx, s.userID, in, quantity)
}

func (s *remoteStrategy) Remove(ctx context.Context, id string) error {
	// Lines carried over from a guest session keep their synthesized ids;
	// there is no durable row to delete for those.
	if isLocalID(id) {
		return nil
	}
	return s.repo.Delete(ctx, s.userID, id)
}

func (s *remoteStrategy) SetQuantity(ctx context.Context, id string, quantity int) error {
	if isLocalID(id) {
		return nil
	}
	return s.repo.UpdateQuantity(ctx, s.userID, id, quantity)
}

func (s *remoteStrategy) Clear(ctx context.Context) error {
	return s.repo.DeleteByUser(ctx, s.userID)
}

func isLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
