package auth

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/sheetal/scoops-api/internal/domain/user"
)

// Resolver turns an opaque identity token into a user, or into no user at
// all. A missing or unrecognized token resolves to (nil, nil) rather than an
// error: "no identity" is a normal outcome that callers translate into 401,
// while a non-nil error means the lookup itself failed.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*user.User, error)
}

var _ Resolver = (*UserIDResolver)(nil)

// UserIDResolver resolves tokens that are plain numeric user IDs, as carried
// in the X-User-Id request header. It fails open to "no user" on anything
// that does not match an existing user.
type UserIDResolver struct {
	users user.Repository
}

// NewUserIDResolver returns a Resolver backed by the given user repository.
func NewUserIDResolver(users user.Repository) *UserIDResolver {
	return &UserIDResolver{users: users}
}

// Resolve parses the token as a user ID and looks it up.
func (r *UserIDResolver) Resolve(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return nil, nil
	}

	u, err := r.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "resolve user")
	}
	return u, nil
}
