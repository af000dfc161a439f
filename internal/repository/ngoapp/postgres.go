package ngoapp

import (
	"context"
	"io"
	"log"
	"time"

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

func (r *postgresRepo) Insert(ctx context.Context, in domain.NGOApplication) (*domain.NGOApplication, error) {
	const q = `
INSERT INTO ngo_applications
	(ngo_name, registration_number, contact_person, contact_email, contact_phone, service_area, operational_details, documents, status)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
RETURNING id::text, created_at
`
	out := in
	if out.Documents == nil {
		out.Documents = []string{}
	}
	if err := r.pool.QueryRow(ctx, q,
		in.NGOName, in.RegistrationNumber, in.ContactPerson, in.ContactEmail,
		in.ContactPhone, in.ServiceArea, in.OperationalDetails, out.Documents,
		in.Status,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("ngo app repo: insert reg=%s error=%v", in.RegistrationNumber, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.NGOApplication, error) {
	const q = `
SELECT id::text, ngo_name, registration_number, contact_person, contact_email, contact_phone,
	service_area, COALESCE(operational_details, ''), documents, status, COALESCE(admin_notes, ''),
	reviewed_by::text, reviewed_at, created_at
FROM ngo_applications
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("ngo app repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var apps []domain.NGOApplication
	for rows.Next() {
		var app domain.NGOApplication
		if err := rows.Scan(
			&app.ID,
			&app.NGOName,
			&app.RegistrationNumber,
			&app.ContactPerson,
			&app.ContactEmail,
			&app.ContactPhone,
			&app.ServiceArea,
			&app.OperationalDetails,
			&app.Documents,
			&app.Status,
			&app.AdminNotes,
			&app.ReviewedBy,
			&app.ReviewedAt,
			&app.CreatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *postgresRepo) Review(ctx context.Context, id, status, adminNotes, reviewerID string, reviewedAt time.Time) error {
	const q = `
UPDATE ngo_applications
SET status = $1,
    admin_notes = NULLIF($2, ''),
    reviewed_by = $3,
    reviewed_at = $4
WHERE id = $5
`
	cmd, err := r.pool.Exec(ctx, q, status, adminNotes, reviewerID, reviewedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
