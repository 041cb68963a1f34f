package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/business"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

const (
	// Users are always loaded with their business name to avoid a second
	// round-trip when building profile responses.
	getUserByIDSQL = `SELECT u.id, u.username, u.password_hash, u.role, u.business_id,
			COALESCE(b.name, ''), u.created_at
		FROM users u
		LEFT JOIN businesses b ON b.id = u.business_id
		WHERE u.id = $1`

	getUserByUsernameSQL = `SELECT u.id, u.username, u.password_hash, u.role, u.business_id,
			COALESCE(b.name, ''), u.created_at
		FROM users u
		LEFT JOIN businesses b ON b.id = u.business_id
		WHERE u.username = $1`

	usernameTakenSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	insertBusinessSQL = `INSERT INTO businesses (name, contact_person, address, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	insertUserSQL = `INSERT INTO users (username, password_hash, role, business_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
)

var (
	_ user.Repository = (*UserRepository)(nil)
	_ auth.Registrar  = (*UserRepository)(nil)
)

// UserRepository implements user.Repository and auth.Registrar backed by
// PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a user by its identifier, or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByUsername returns a user by username, or user.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// UsernameTaken reports whether the username is already registered.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	if err := r.pool.QueryRow(ctx, usernameTakenSQL, username).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking username %q: %w", username, err)
	}
	return taken, nil
}

// CreateBusinessAndCustomer inserts the business and its customer user in a
// single transaction, so a failed user insert never leaves an orphan
// business behind.
func (r *UserRepository) CreateBusinessAndCustomer(ctx context.Context, b *business.Business, u *user.User) (*user.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning registration tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	err = tx.QueryRow(ctx, insertBusinessSQL,
		b.Name, b.ContactPerson, b.Address, b.Phone, b.Email,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating business %q: %w", b.Name, err)
	}

	err = tx.QueryRow(ctx, insertUserSQL,
		u.Username, u.PasswordHash, string(u.Role), b.ID,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		// Two concurrent registrations can both pass the pre-insert
		// availability check; the unique index is the arbiter.
		if isUniqueViolation(err) {
			return nil, auth.ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user %q: %w", u.Username, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing registration: %w", err)
	}

	u.BusinessID = &b.ID
	u.BusinessName = b.Name
	return u, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u    user.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &role,
		&u.BusinessID, &u.BusinessName, &u.CreatedAt,
	)
	u.Role = user.Role(role)
	return u, err
}
