package usecase

import (
	"context"
	"time"

	"github.com/aicoder/backend/internal/metrics"
	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

const metricsDomain = "secrets"

// secretsUseCaseWithMetrics decorates SecretsUseCase with metrics instrumentation.
type secretsUseCaseWithMetrics struct {
	next    SecretsUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretsUseCaseWithMetrics wraps a SecretsUseCase with metrics recording.
func NewSecretsUseCaseWithMetrics(useCase SecretsUseCase, m metrics.BusinessMetrics) SecretsUseCase {
	return &secretsUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretsUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, s.metrics, metricsDomain, operation, start, err)
}

// Initialize delegates without recording; it runs once per process.
func (s *secretsUseCaseWithMetrics) Initialize(ctx context.Context, keyConfig KeyConfig) error {
	return s.next.Initialize(ctx, keyConfig)
}

// Encrypt records metrics for encrypt operations.
func (s *secretsUseCaseWithMetrics) Encrypt(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	envelope, err := s.next.Encrypt(ctx, plaintext)
	s.record(ctx, "encrypt", start, err)
	return envelope, err
}

// Decrypt records metrics for decrypt operations.
func (s *secretsUseCaseWithMetrics) Decrypt(ctx context.Context, envelope string) (string, error) {
	start := time.Now()
	plaintext, err := s.next.Decrypt(ctx, envelope)
	s.record(ctx, "decrypt", start, err)
	return plaintext, err
}

func (s *secretsUseCaseWithMetrics) Hash(data string) string {
	return s.next.Hash(data)
}

// GenerateToken records metrics for token generation. It has no caller context.
func (s *secretsUseCaseWithMetrics) GenerateToken(byteLength int) (string, error) {
	start := time.Now()
	token, err := s.next.GenerateToken(byteLength)
	s.record(context.Background(), "generate_token", start, err)
	return token, err
}

func (s *secretsUseCaseWithMetrics) KeySource() secretsDomain.KeySource {
	return s.next.KeySource()
}
