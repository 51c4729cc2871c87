package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/libris-app/libris/domain"
	apperrors "github.com/libris-app/libris/errors"
)

func TestRegisterSuccess(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, stubHasher{})

	users.On("CreateUser", context.Background(), mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.Register(context.Background(), "reader@example.com", "s3cretpass", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "hashed:s3cretpass", user.PasswordHash)
	users.AssertExpectations(t)
}

func TestRegisterValidation(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, stubHasher{})

	_, err := svc.Register(context.Background(), "not-an-email", "short", "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Entries, 2)
	users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewUserService(users, stubHasher{})

	users.On("CreateUser", context.Background(), mock.AnythingOfType("*domain.User")).
		Return(domain.ErrUserExists)

	_, err := svc.Register(context.Background(), "reader@example.com", "s3cretpass", "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
