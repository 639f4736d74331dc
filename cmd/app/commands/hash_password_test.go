package commands

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

func TestRunHashPassword(t *testing.T) {
	hasher, err := secretsService.NewBcryptPasswordHasher(10)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunHashPassword(hasher, &out, "correct horse"))

		hashed := strings.TrimSpace(out.String())
		assert.True(t, strings.HasPrefix(hashed, "$2a$10$"))
		require.NoError(t, hasher.Compare(hashed, "correct horse"))
	})

	t.Run("empty password", func(t *testing.T) {
		err := RunHashPassword(hasher, io.Discard, "")
		require.Error(t, err)
	})
}
