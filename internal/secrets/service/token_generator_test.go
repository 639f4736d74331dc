package service

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

func TestRandomTokenGenerator_Generate(t *testing.T) {
	generator := NewRandomTokenGenerator()

	t.Run("Success_Lengths", func(t *testing.T) {
		for _, n := range []int{1, 16, 32, 64} {
			token, err := generator.Generate(n)
			require.NoError(t, err)
			assert.Len(t, token, 2*n)

			_, err = hex.DecodeString(token)
			assert.NoError(t, err)
		}
	})

	t.Run("Success_Unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			token, err := generator.Generate(secretsDomain.DefaultTokenLength)
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup)
			seen[token] = struct{}{}
		}
	})

	t.Run("Error_NonPositiveLength", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			token, err := generator.Generate(n)
			assert.ErrorIs(t, err, secretsDomain.ErrInvalidTokenLength)
			assert.Empty(t, token)
		}
	})
}
