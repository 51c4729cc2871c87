package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/domain"
	apperrors "github.com/libris-app/libris/errors"
)

// UserService owns credential record creation. Password state is only ever
// written here; the session manager just reads it.
type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
}

// NewUserService creates a UserService.
func NewUserService(users domain.UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// Register creates a new credential record with a hashed password.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error) {
	verr := &apperrors.ValidationError{}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		verr.Add("valid email required", "email")
	}
	if len(password) < 8 {
		verr.Add("minimum length 8", "password")
	}
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.NewInternal("could not hash password", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, (&apperrors.ValidationError{}).Add("already registered", "email")
		}
		return nil, apperrors.NewInternal("could not create user", err)
	}

	log.Info().Str("userID", user.ID).Msg("user registered")
	return user, nil
}
