package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

func TestNewBcryptPasswordHasher(t *testing.T) {
	_, err := NewBcryptPasswordHasher(bcrypt.MinCost)
	assert.NoError(t, err)

	_, err = NewBcryptPasswordHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = NewBcryptPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestBcryptPasswordHasher_HashCompare(t *testing.T) {
	hasher, err := NewBcryptPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	t.Run("Success_Match", func(t *testing.T) {
		assert.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
	})

	t.Run("Error_Mismatch", func(t *testing.T) {
		err := hasher.Compare(hash, "wrong")
		assert.ErrorIs(t, err, secretsDomain.ErrPasswordMismatch)
	})

	t.Run("Error_InvalidHash", func(t *testing.T) {
		err := hasher.Compare("not-a-bcrypt-hash", "x")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, secretsDomain.ErrPasswordMismatch)
	})
}
