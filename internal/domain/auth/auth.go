// Package auth resolves caller identities and implements login, registration
// and profile management on top of the user and business repositories.
//
// Identity is carried as an out-of-band user identifier on each request.
// There is no signed session token; the Resolver interface exists so a real
// token scheme can be substituted without touching the order engine or the
// authorization predicates.
package auth

import (
	"github.com/go-faster/errors"

	"github.com/sheetal/scoops-api/internal/domain/user"
)

// Sentinel errors surfaced to the transport layer.
var (
	// ErrUnauthenticated means no identity could be resolved where one is
	// required. Distinct from ErrAccessDenied: 401 vs 403.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAccessDenied means an identity was resolved but its role is
	// insufficient for the operation.
	ErrAccessDenied = errors.New("admin access required")

	// ErrInvalidCredentials is returned for both an unknown username and a
	// wrong password, so login failures never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrMissingFields    = errors.New("username, password and business name are required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUsernameTaken    = errors.New("username already taken")

	// ErrNoBusiness is returned when a profile update is attempted by a user
	// with no linked business.
	ErrNoBusiness = errors.New("user has no linked business")
)

// RequireAdmin is the authorization predicate guarding every privileged
// operation. A nil user and a non-admin user both fail closed.
func RequireAdmin(u *user.User) error {
	if !u.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}

// CanViewBusiness reports whether u may observe entities belonging to the
// given business. Admins see everything; customers only their own business.
func CanViewBusiness(u *user.User, businessID int64) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.BusinessID != nil && *u.BusinessID == businessID
}
