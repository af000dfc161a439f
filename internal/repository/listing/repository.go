package listing

import (
	"context"

	"clothcycle/internal/domain"
)

type Repository interface {
	Insert(ctx context.Context, in domain.Listing) (*domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Listing, error)
	SetStatus(ctx context.Context, id, status string) error
}
