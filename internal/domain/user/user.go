package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Role distinguishes unrestricted admins from business-scoped customers.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// User is a system account. Admins have no business link; customers are
// scoped to exactly one business. PasswordHash is opaque to every layer
// except the auth service and never leaves the process boundary.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	BusinessID   *int64
	BusinessName string
	CreatedAt    time.Time
}

// IsAdmin is the single role predicate used by authorization checks.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Repository defines persistence operations for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// UsernameTaken reports whether a user with the given username exists.
	UsernameTaken(ctx context.Context, username string) (bool, error)
}
