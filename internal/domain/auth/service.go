package auth

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/sheetal/scoops-api/internal/domain/business"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

// MinPasswordLength is enforced at registration time.
const MinPasswordLength = 8

// Registrar persists a new business together with its first customer user as
// a single atomic unit. Implemented by the postgres storage layer.
type Registrar interface {
	CreateBusinessAndCustomer(ctx context.Context, b *business.Business, u *user.User) (*user.User, error)
}

// RegisterRequest is the input for self-service registration: one business
// plus the customer account linked to it.
type RegisterRequest struct {
	Username      string
	Password      string
	BusinessName  string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// Service implements login, registration and profile updates.
type Service struct {
	users      user.Repository
	businesses business.Repository
	registrar  Registrar
}

// NewService creates an auth Service with the required dependencies.
func NewService(users user.Repository, businesses business.Repository, registrar Registrar) *Service {
	return &Service{
		users:      users,
		businesses: businesses,
		registrar:  registrar,
	}
}

// Login verifies a username/password pair and returns the matching user.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials so
// responses cannot be used for username enumeration.
func (s *Service) Login(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new business and a customer user linked to it in one
// step. The user and the business are committed atomically.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	username := strings.TrimSpace(req.Username)
	businessName := strings.TrimSpace(req.BusinessName)

	if username == "" || req.Password == "" || businessName == "" {
		return nil, ErrMissingFields
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "check username")
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	b := &business.Business{
		Name:          businessName,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
	}
	u := &user.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         user.RoleCustomer,
	}

	created, err := s.registrar.CreateBusinessAndCustomer(ctx, b, u)
	if err != nil {
		return nil, errors.Wrap(err, "create business and user")
	}
	return created, nil
}

// UpdateProfile applies a partial update to the caller's linked business.
// Customers without a business (and admins, which never have one) cannot
// update a profile.
func (s *Service) UpdateProfile(ctx context.Context, u *user.User, upd business.ProfileUpdate) (*business.Business, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	if u.BusinessID == nil {
		return nil, ErrNoBusiness
	}

	b, err := s.businesses.Update(ctx, *u.BusinessID, upd)
	if err != nil {
		return nil, errors.Wrap(err, "update business")
	}
	return b, nil
}

// ListBusinesses returns every registered business, admin-only.
func (s *Service) ListBusinesses(ctx context.Context, caller *user.User) ([]business.Business, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	list, err := s.businesses.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list businesses")
	}
	return list, nil
}
