package order

import (
	"context"

	"clothcycle/internal/domain"
)

type Repository interface {
	// CreateWithItems writes the order header and all order items in one
	// transaction; either everything is recorded or nothing is.
	CreateWithItems(ctx context.Context, in domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}
