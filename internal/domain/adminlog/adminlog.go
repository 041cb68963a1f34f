// Package adminlog is the append-only audit trail of admin actions.
// The Repository deliberately exposes no update or delete operation:
// immutability is structural, not a convention.
package adminlog

import (
	"context"
	"time"

	"github.com/sheetal/scoops-api/internal/domain/user"
)

// Entry is a single immutable audit record.
type Entry struct {
	ID            int64
	AdminUserID   int64
	AdminUsername string
	Action        string
	ActionTime    time.Time
}

// Repository defines the insert-only persistence contract for audit entries.
type Repository interface {
	// Record appends an entry for the given admin and returns it.
	Record(ctx context.Context, admin *user.User, action string) (*Entry, error)
	// List returns all entries, newest first.
	List(ctx context.Context) ([]Entry, error)
}
