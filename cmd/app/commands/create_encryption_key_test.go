package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (secretsService.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(secretsService.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

const testKMSKeyURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

func TestRunCreateEncryptionKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plaintext key", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, nil, logger, &out, "")
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^ENCRYPTION_KEY="[0-9a-f]{64}"\n$`), out.String())
	})

	t.Run("kms wrapped key", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://test").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("wrapped"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, mockService, logger, &out, "base64key://test")
		require.NoError(t, err)

		assert.Contains(t, out.String(), `ENCRYPTION_KEY="`+hex.EncodeToString([]byte("wrapped"))+`"`)
		assert.Contains(t, out.String(), `KMS_KEY_URI="base64key://test"`)
		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("kms wrapped key unwraps to 32 bytes", func(t *testing.T) {
		kmsService := secretsService.NewKMSService()

		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, kmsService, logger, &out, testKMSKeyURI)
		require.NoError(t, err)

		match := regexp.MustCompile(`ENCRYPTION_KEY="([0-9a-f]+)"`).FindStringSubmatch(out.String())
		require.Len(t, match, 2)
		wrapped, err := hex.DecodeString(match[1])
		require.NoError(t, err)

		keeper, err := kmsService.OpenKeeper(ctx, testKMSKeyURI)
		require.NoError(t, err)
		defer func() { _ = keeper.Close() }()

		key, err := keeper.Decrypt(ctx, wrapped)
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("open keeper error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "bad://uri").Return(nil, errors.New("open error"))

		err := RunCreateEncryptionKey(ctx, mockService, logger, io.Discard, "bad://uri")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open error")
	})

	t.Run("wrap error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://test").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return(nil, errors.New("kms down"))
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateEncryptionKey(ctx, mockService, logger, &out, "base64key://test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to wrap encryption key with KMS")
		assert.Empty(t, out.String())
		mockKeeper.AssertExpectations(t)
	})
}
