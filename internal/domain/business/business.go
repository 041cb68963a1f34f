package business

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a referenced business does not exist.
var ErrNotFound = errors.New("business not found")

// Business represents a B2B client organization that places orders.
// Every customer user and every order belongs to exactly one Business.
type Business struct {
	ID            int64
	Name          string
	ContactPerson string
	Address       string
	Phone         string
	Email         string
	CreatedAt     time.Time
}

// ProfileUpdate holds the optional business contact fields a customer may
// change through their profile. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name          *string
	ContactPerson *string
	Address       *string
	Phone         *string
	Email         *string
}

// Repository defines persistence operations for businesses.
type Repository interface {
	// List returns all businesses ordered alphabetically by name.
	List(ctx context.Context) ([]Business, error)
	GetByID(ctx context.Context, id int64) (*Business, error)
	Update(ctx context.Context, id int64, upd ProfileUpdate) (*Business, error)
}
