package listing

import (
	"context"
	"errors"
	"io"
	"log"

	"clothcycle/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const listingColumns = `
id::text, category, size, COALESCE(fabric, ''), COALESCE(condition_notes, ''), has_defects,
COALESCE(tier, ''), price, donation, photos, city, pincode,
COALESCE(pickup_availability, ''), COALESCE(contact, ''), status, created_at
`

func (r *postgresRepo) Insert(ctx context.Context, in domain.Listing) (*domain.Listing, error) {
	const q = `
INSERT INTO clothing_listings
	(category, size, fabric, condition_notes, has_defects, tier, price, donation, photos, city, pincode, pickup_availability, contact, status)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14)
RETURNING id::text, created_at
`
	out := in
	if out.Photos == nil {
		out.Photos = []domain.ListingPhoto{}
	}
	if err := r.pool.QueryRow(ctx, q,
		in.Category, in.Size, in.Fabric, in.ConditionNotes, in.HasDefects,
		in.Tier, in.Price, in.Donation, out.Photos, in.City, in.Pincode,
		in.PickupAvailability, in.Contact, in.Status,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("listing repo: insert category=%s error=%v", in.Category, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM clothing_listings WHERE id = $1`
	row := r.pool.QueryRow(ctx, q, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status string) ([]domain.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM clothing_listings WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		r.logger.Printf("listing repo: list status=%s error=%v", status, err)
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE clothing_listings SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID,
		&l.Category,
		&l.Size,
		&l.Fabric,
		&l.ConditionNotes,
		&l.HasDefects,
		&l.Tier,
		&l.Price,
		&l.Donation,
		&l.Photos,
		&l.City,
		&l.Pincode,
		&l.PickupAvailability,
		&l.Contact,
		&l.Status,
		&l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
