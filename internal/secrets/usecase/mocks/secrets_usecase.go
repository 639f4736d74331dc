// Package mocks provides mock implementations of the secrets use case for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	"github.com/aicoder/backend/internal/secrets/usecase"
)

// MockSecretsUseCase is a mock implementation of SecretsUseCase for testing.
type MockSecretsUseCase struct {
	mock.Mock
}

// Initialize mocks the Initialize method of SecretsUseCase.
func (m *MockSecretsUseCase) Initialize(ctx context.Context, keyConfig usecase.KeyConfig) error {
	args := m.Called(ctx, keyConfig)
	return args.Error(0)
}

// Encrypt mocks the Encrypt method of SecretsUseCase.
func (m *MockSecretsUseCase) Encrypt(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

// Decrypt mocks the Decrypt method of SecretsUseCase.
func (m *MockSecretsUseCase) Decrypt(ctx context.Context, envelope string) (string, error) {
	args := m.Called(ctx, envelope)
	return args.String(0), args.Error(1)
}

// Hash mocks the Hash method of SecretsUseCase.
func (m *MockSecretsUseCase) Hash(data string) string {
	args := m.Called(data)
	return args.String(0)
}

// GenerateToken mocks the GenerateToken method of SecretsUseCase.
func (m *MockSecretsUseCase) GenerateToken(byteLength int) (string, error) {
	args := m.Called(byteLength)
	return args.String(0), args.Error(1)
}

// KeySource mocks the KeySource method of SecretsUseCase.
func (m *MockSecretsUseCase) KeySource() secretsDomain.KeySource {
	args := m.Called()
	return args.Get(0).(secretsDomain.KeySource)
}
