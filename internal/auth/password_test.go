package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewBcryptPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, hasher.Verify(hash, "correct horse battery staple"))
	assert.Error(t, hasher.Verify(hash, "wrong password"))
}

func TestCostFallback(t *testing.T) {
	hasher := NewBcryptPasswordHasher(0)
	assert.Equal(t, bcrypt.DefaultCost, hasher.Cost)

	hasher = NewBcryptPasswordHasher(-3)
	assert.Equal(t, bcrypt.DefaultCost, hasher.Cost)
}
