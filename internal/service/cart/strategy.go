package cart

import (
	"context"

	"clothcycle/internal/domain"
)

// Strategy is one backing store for cart lines. The store swaps strategies
// when identity changes instead of branching on identity inside every
// operation.
type Strategy interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	// Add persists a new line with the given quantity and returns it with its
	// assigned id.
	Add(ctx context.Context, in domain.CartLineInput, quantity int) (*domain.CartLine, error)
	Remove(ctx context.Context, id string) error
	SetQuantity(ctx context.Context, id string, quantity int) error
	Clear(ctx context.Context) error
}
