package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetal/scoops-api/internal/domain/business"
)

const (
	listBusinessesSQL = `SELECT id, name, COALESCE(contact_person, ''), COALESCE(address, ''),
			COALESCE(phone, ''), COALESCE(email, ''), created_at
		FROM businesses ORDER BY name`

	getBusinessByIDSQL = `SELECT id, name, COALESCE(contact_person, ''), COALESCE(address, ''),
			COALESCE(phone, ''), COALESCE(email, ''), created_at
		FROM businesses WHERE id = $1`

	updateBusinessSQL = `UPDATE businesses SET
			name           = COALESCE($2, name),
			contact_person = COALESCE($3, contact_person),
			address        = COALESCE($4, address),
			phone          = COALESCE($5, phone),
			email          = COALESCE($6, email)
		WHERE id = $1
		RETURNING id, name, COALESCE(contact_person, ''), COALESCE(address, ''),
			COALESCE(phone, ''), COALESCE(email, ''), created_at`
)

var _ business.Repository = (*BusinessRepository)(nil)

// BusinessRepository implements business.Repository backed by PostgreSQL.
type BusinessRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessRepository returns a BusinessRepository that uses the given pool.
func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

// List returns all businesses ordered alphabetically by name.
func (r *BusinessRepository) List(ctx context.Context) ([]business.Business, error) {
	rows, err := r.pool.Query(ctx, listBusinessesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing businesses: %w", err)
	}
	return pgx.CollectRows(rows, scanBusiness)
}

// GetByID returns a single business by its identifier.
func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*business.Business, error) {
	rows, err := r.pool.Query(ctx, getBusinessByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting business #%d: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBusiness)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, business.ErrNotFound
		}
		return nil, fmt.Errorf("getting business #%d: %w", id, err)
	}
	return &b, nil
}

// Update applies a partial update; nil fields keep their current value.
func (r *BusinessRepository) Update(ctx context.Context, id int64, upd business.ProfileUpdate) (*business.Business, error) {
	rows, err := r.pool.Query(ctx, updateBusinessSQL,
		id, upd.Name, upd.ContactPerson, upd.Address, upd.Phone, upd.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("updating business #%d: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBusiness)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, business.ErrNotFound
		}
		return nil, fmt.Errorf("updating business #%d: %w", id, err)
	}
	return &b, nil
}

func scanBusiness(row pgx.CollectableRow) (business.Business, error) {
	var b business.Business
	err := row.Scan(
		&b.ID, &b.Name, &b.ContactPerson, &b.Address,
		&b.Phone, &b.Email, &b.CreatedAt,
	)
	return b, err
}
