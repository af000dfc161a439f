package cart

import (
	"context"

	"clothcycle/internal/domain"
	"clothcycle/internal/localstore"
	"github.com/google/uuid"
)

const (
	cartStorageKey = "clothcycle_cart"
	localIDPrefix  = "local-"
)

// localStrategy keeps the whole line list as one JSON value in the
// device-scoped store. Every mutation re-reads, applies, and re-persists the
// full list, so the device store is always a faithful copy.
type localStrategy struct {
	store    *localstore.Store
	deviceID string
}

// NewLocalStrategy returns the device-scoped fallback store used while no
// identity is present.
func NewLocalStrategy(store *localstore.Store, deviceID string) Strategy {
	return &localStrategy{store: store, deviceID: deviceID}
}

func (s *localStrategy) Load(_ context.Context) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	s.store.Get(s.deviceID, cartStorageKey, &lines)
	return lines, nil
}

func (s *localStrategy) Add(_ context.Context, in domain.CartLineInput, quantity int) (*domain.CartLine, error) {
	lines, _ := s.Load(nil)
	line := domain.CartLine{
		ID:          localIDPrefix + uuid.NewString(),
		ListingID:   in.ListingID,
		Title:       in.Title,
		Tier:        in.Tier,
		SellerPrice: in.SellerPrice,
		BuyerPrice:  in.BuyerPrice,
		City:        in.City,
		Size:        in.Size,
		Category:    in.Category,
		Image:       in.Image,
		Quantity:    quantity,
	}
	lines = append(lines, line)
	if err := s.store.Put(s.deviceID, cartStorageKey, lines); err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *localStrategy) Remove(_ context.Context, id string) error {
	lines, _ := s.Load(nil)
	kept := lines[:0]
	for _, line := range lines {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	return s.store.Put(s.deviceID, cartStorageKey, kept)
}

func (s *localStrategy) SetQuantity(_ context.Context, id string, quantity int) error {
	lines, _ := s.Load(nil)
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = quantity
		}
	}
	return s.store.Put(s.deviceID, cartStorageKey, lines)
}

func (s *localStrategy) Clear(_ context.Context) error {
	return s.store.Delete(s.deviceID, cartStorageKey)
}
