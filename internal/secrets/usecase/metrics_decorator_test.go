package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	"github.com/aicoder/backend/internal/secrets/usecase"
	usecaseMocks "github.com/aicoder/backend/internal/secrets/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectRecord(m *mockBusinessMetrics, ctx any, operation, status string) {
	m.On("RecordOperation", ctx, "secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "secrets", operation, mock.AnythingOfType("time.Duration"), status).
		Return().
		Once()
}

func TestSecretsUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockSecretsUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewSecretsUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Encrypt success", func(t *testing.T) {
		mockNext.On("Encrypt", ctx, "data").Return("iv:tag:ct", nil).Once()
		expectRecord(mockMetrics, ctx, "encrypt", "success")

		envelope, err := uc.Encrypt(ctx, "data")
		assert.NoError(t, err)
		assert.Equal(t, "iv:tag:ct", envelope)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Encrypt error", func(t *testing.T) {
		mockNext.On("Encrypt", ctx, "data").Return("", secretsDomain.ErrUninitialized).Once()
		expectRecord(mockMetrics, ctx, "encrypt", "error")

		envelope, err := uc.Encrypt(ctx, "data")
		assert.ErrorIs(t, err, secretsDomain.ErrUninitialized)
		assert.Empty(t, envelope)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Decrypt success", func(t *testing.T) {
		mockNext.On("Decrypt", ctx, "iv:tag:ct").Return("data", nil).Once()
		expectRecord(mockMetrics, ctx, "decrypt", "success")

		plaintext, err := uc.Decrypt(ctx, "iv:tag:ct")
		assert.NoError(t, err)
		assert.Equal(t, "data", plaintext)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Decrypt error", func(t *testing.T) {
		mockNext.On("Decrypt", ctx, "bad").Return("", secretsDomain.ErrMalformedEnvelope).Once()
		expectRecord(mockMetrics, ctx, "decrypt", "error")

		_, err := uc.Decrypt(ctx, "bad")
		assert.ErrorIs(t, err, secretsDomain.ErrMalformedEnvelope)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("GenerateToken success", func(t *testing.T) {
		mockNext.On("GenerateToken", 16).Return("abcd", nil).Once()
		expectRecord(mockMetrics, mock.Anything, "generate_token", "success")

		token, err := uc.GenerateToken(16)
		assert.NoError(t, err)
		assert.Equal(t, "abcd", token)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("GenerateToken error", func(t *testing.T) {
		mockNext.On("GenerateToken", 0).Return("", errors.New("error")).Once()
		expectRecord(mockMetrics, mock.Anything, "generate_token", "error")

		_, err := uc.GenerateToken(0)
		assert.Error(t, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Passthrough without metrics", func(t *testing.T) {
		keyConfig := usecase.KeyConfig{Production: true, EncryptionKey: "ab"}
		mockNext.On("Initialize", ctx, keyConfig).Return(nil).Once()
		mockNext.On("Hash", "data").Return("digest").Once()
		mockNext.On("KeySource").Return(secretsDomain.KeySourceProvided).Once()

		assert.NoError(t, uc.Initialize(ctx, keyConfig))
		assert.Equal(t, "digest", uc.Hash("data"))
		assert.Equal(t, secretsDomain.KeySourceProvided, uc.KeySource())
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}
