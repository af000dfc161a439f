package order

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

func (r *postgresRepo) CreateWithItems(ctx context.Context, in domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const headerQ = `
INSERT INTO orders
	(user_id, full_name, phone, email, street_address, city, postal_code, state, delivery_instructions, payment_method, status, total_amount, platform_fee, grand_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13, $14)
RETURNING id::text, created_at
`
	out := in
	if err := tx.QueryRow(ctx, headerQ,
		in.UserID, in.FullName, in.Phone, in.Email, in.StreetAddress, in.City,
		in.PostalCode, in.State, in.DeliveryInstructions, in.PaymentMethod,
		in.Status, in.TotalAmount, in.PlatformFee, in.GrandTotal,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("order repo: insert header error=%v", err)
		return nil, err
	}

	const itemQ = `
INSERT INTO order_items
	(order_id, listing_id, title, tier, seller_price, buyer_price, city, size, category, image, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
RETURNING id::text
`
	out.Items = make([]domain.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		item.OrderID = out.ID
		if err := tx.QueryRow(ctx, itemQ,
			out.ID, item.ListingID, item.Title, item.Tier, item.SellerPrice,
			item.BuyerPrice, item.City, item.Size, item.Category, item.Image,
			item.Quantity,
		).Scan(&item.ID); err != nil {
			r.logger.Printf("order repo: insert item listing_id=%s error=%v", item.ListingID, err)
			return nil, err
		}
		out.Items = append(out.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const headerQ = `
SELECT id::text, user_id::text, full_name, phone, email, street_address, city, postal_code, state,
	COALESCE(delivery_instructions, ''), payment_method, status, total_amount, platform_fee, grand_total, created_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, headerQ, id).Scan(
		&o.ID,
		&o.UserID,
		&o.FullName,
		&o.Phone,
		&o.Email,
		&o.StreetAddress,
		&o.City,
		&o.PostalCode,
		&o.State,
		&o.DeliveryInstructions,
		&o.PaymentMethod,
		&o.Status,
		&o.TotalAmount,
		&o.PlatformFee,
		&o.GrandTotal,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const itemsQ = `
SELECT id::text, order_id::text, listing_id::text, title, tier, seller_price, buyer_price, city, size, category, COALESCE(image, ''), quantity
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, itemsQ, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ListingID,
			&item.Title,
			&item.Tier,
			&item.SellerPrice,
			&item.BuyerPrice,
			&item.City,
			&item.Size,
			&item.Category,
			&item.Image,
			&item.Quantity,
		); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
