package ngoapp

import (
	"context"
	"time"

	"clothcycle/internal/domain"
)

type Repository interface {
	Insert(ctx context.Context, in domain.NGOApplication) (*domain.NGOApplication, error)
	List(ctx context.Context) ([]domain.NGOApplication, error)
	Review(ctx context.Context, id, status, adminNotes, reviewerID string, reviewedAt time.Time) error
}
