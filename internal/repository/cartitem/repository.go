package cartitem

import (
	"context"

	"clothcycle/internal/domain"
)

// Repository persists durable cart rows for authenticated users. Each row is
// keyed by user id and carries the listing snapshot.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)
	Insert(ctx context.Context, userID string, in domain.CartLineInput, quantity int) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}
