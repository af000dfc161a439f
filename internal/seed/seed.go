package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"clothcycle/internal/domain"
)

type listingSeed struct {
	ID             string
	Category       string
	Size           string
	Fabric         string
	ConditionNotes string
	Tier           string
	Price          float64
	Donation       bool
	City           string
	Pincode        string
	Photos         []domain.ListingPhoto
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	listings := []listingSeed{
		{
			ID:             "11111111-1111-4111-8111-111111111111",
			Category:       "Shirts",
			Size:           "M",
			Fabric:         "Cotton",
			ConditionNotes: "Gently worn, no stains",
			Tier:           domain.TierB,
			Price:          25,
			City:           "Pune",
			Pincode:        "411001",
			Photos: []domain.ListingPhoto{
				{URL: "https://example.com/seed/shirt-front.jpg", Filename: "shirt-front.jpg"},
			},
		},
		{
			ID:             "22222222-2222-4222-8222-222222222222",
			Category:       "Jackets",
			Size:           "L",
			Fabric:         "Denim",
			ConditionNotes: "Like new",
			Tier:           domain.TierA,
			Price:          80,
			City:           "Mumbai",
			Pincode:        "400001",
			Photos: []domain.ListingPhoto{
				{URL: "https://example.com/seed/jacket-front.jpg", Filename: "jacket-front.jpg"},
			},
		},
		{
			ID:       "33333333-3333-4333-8333-333333333333",
			Category: "Sarees",
			Size:     "Free",
			Fabric:   "Silk",
			Donation: true,
			City:     "Bengaluru",
			Pincode:  "560001",
		},
	}

	for _, l := range listings {
		if err := upsertListing(ctx, pool, l); err != nil {
			return fmt.Errorf("upsert listing %s: %w", l.ID, err)
		}
	}

	return nil
}

func upsertListing(ctx context.Context, pool *pgxpool.Pool, l listingSeed) error {
	const q = `
INSERT INTO clothing_listings
	(id, category, size, fabric, condition_notes, has_defects, tier, price, donation, photos, city, pincode, status)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), false, NULLIF($6, ''), $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE
SET category = EXCLUDED.category,
    size = EXCLUDED.size,
    price = EXCLUDED.price,
    photos = EXCLUDED.photos,
    status = EXCLUDED.status
`
	photos := l.Photos
	if photos == nil {
		photos = []domain.ListingPhoto{}
	}
	raw, err := json.Marshal(photos)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, q,
		l.ID, l.Category, l.Size, l.Fabric, l.ConditionNotes, l.Tier,
		l.Price, l.Donation, raw, l.City, l.Pincode, domain.ListingStatusApproved,
	)
	return err
}
