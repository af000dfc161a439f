package cartitem

import (
	"context"
	"io"
	"log"

	"clothcycle/internal/domain"
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

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
SELECT id::text, listing_id::text, title, tier, seller_price, buyer_price, city, size, category, COALESCE(image, ''), quantity
FROM cart_items
WHERE user_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("cart item repo: list user_id=%s error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.ListingID,
			&line.Title,
			&line.Tier,
			&line.SellerPrice,
			&line.BuyerPrice,
			&line.City,
			&line.Size,
			&line.Category,
			&line.Image,
			&line.Quantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) Insert(ctx context.Context, userID string, in domain.CartLineInput, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_items (user_id, listing_id, title, tier, seller_price, buyer_price, city, size, category, image, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
RETURNING id::text
`
	line := domain.CartLine{
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
	if err := r.pool.QueryRow(ctx, q,
		userID, in.ListingID, in.Title, in.Tier, in.SellerPrice, in.BuyerPrice,
		in.City, in.Size, in.Category, in.Image, quantity,
	).Scan(&line.ID); err != nil {
		r.logger.Printf("cart item repo: insert user_id=%s listing_id=%s error=%v", userID, in.ListingID, err)
		return nil, err
	}
	return &line, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, userID, id string, quantity int) error {
	const q = `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND user_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, quantity, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	const q = `
DELETE FROM cart_items
WHERE id = $1 AND user_id = $2
`
	cmd, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
