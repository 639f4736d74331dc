// Package usecase implements the secrets service: a single process-wide key
// installed once, used to seal and open hex envelopes with AES-256-GCM.
//
// The service is an explicit instance created by the DI container and passed to
// the code that needs it. Key state is published through an atomic pointer, so
// Encrypt and Decrypt may be called from any number of goroutines once Initialize
// has returned.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

// keyState is the immutable result of a successful Initialize.
type keyState struct {
	aead   secretsService.AEAD
	source secretsDomain.KeySource
}

// secretsUseCase implements SecretsUseCase.
type secretsUseCase struct {
	mu             sync.Mutex
	state          atomic.Pointer[keyState]
	kmsService     secretsService.KMSService
	hashService    secretsService.HashService
	tokenGenerator secretsService.TokenGenerator
	logger         *slog.Logger
}

// NewSecretsUseCase creates an uninitialized secrets service.
func NewSecretsUseCase(
	kmsService secretsService.KMSService,
	hashService secretsService.HashService,
	tokenGenerator secretsService.TokenGenerator,
	logger *slog.Logger,
) SecretsUseCase {
	return &secretsUseCase{
		kmsService:     kmsService,
		hashService:    hashService,
		tokenGenerator: tokenGenerator,
		logger:         logger,
	}
}

// Initialize installs the service key.
//
// In production the key must come from keyConfig.EncryptionKey, optionally
// unwrapped through KMS; there is no random fallback. Outside production a fresh
// random key is generated and the configured key is not used.
func (s *secretsUseCase) Initialize(ctx context.Context, keyConfig KeyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() != nil {
		return secretsDomain.ErrAlreadyInitialized
	}

	key, source, err := s.loadKey(ctx, keyConfig)
	if err != nil {
		return err
	}
	defer secretsDomain.Zero(key)

	aead, err := secretsService.NewAESGCM(key)
	if err != nil {
		return err
	}

	s.state.Store(&keyState{aead: aead, source: source})

	s.logger.Info("secrets service initialized", slog.String("key_source", string(source)))
	if source == secretsDomain.KeySourceEphemeral {
		s.logger.Warn("generated temporary encryption key, envelopes will not survive a restart")
	}
	return nil
}

func (s *secretsUseCase) loadKey(
	ctx context.Context,
	keyConfig KeyConfig,
) ([]byte, secretsDomain.KeySource, error) {
	if !keyConfig.Production {
		key := make([]byte, secretsDomain.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, secretsDomain.KeySourceNone, fmt.Errorf("failed to generate encryption key: %w", err)
		}
		return key, secretsDomain.KeySourceEphemeral, nil
	}

	if keyConfig.EncryptionKey == "" {
		return nil, secretsDomain.KeySourceNone, secretsDomain.ErrEncryptionKeyRequired
	}

	decoded, err := hex.DecodeString(keyConfig.EncryptionKey)
	if err != nil {
		return nil, secretsDomain.KeySourceNone, secretsDomain.ErrInvalidEncryptionKey
	}

	if keyConfig.KMSKeyURI == "" {
		if len(decoded) != secretsDomain.KeySize {
			secretsDomain.Zero(decoded)
			return nil, secretsDomain.KeySourceNone, secretsDomain.ErrInvalidKeySize
		}
		return decoded, secretsDomain.KeySourceProvided, nil
	}

	key, err := s.unwrapKey(ctx, keyConfig.KMSKeyURI, decoded)
	if err != nil {
		return nil, secretsDomain.KeySourceNone, err
	}
	return key, secretsDomain.KeySourceKMS, nil
}

func (s *secretsUseCase) unwrapKey(ctx context.Context, keyURI string, ciphertext []byte) ([]byte, error) {
	keeper, err := s.kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			s.logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap encryption key: %w", err)
	}
	if len(key) != secretsDomain.KeySize {
		secretsDomain.Zero(key)
		return nil, secretsDomain.ErrInvalidKeySize
	}
	return key, nil
}

// Encrypt seals plaintext and returns its envelope.
func (s *secretsUseCase) Encrypt(ctx context.Context, plaintext string) (string, error) {
	state := s.state.Load()
	if state == nil {
		return "", secretsDomain.ErrUninitialized
	}

	sealed, iv, err := state.aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", err
	}

	envelope, err := secretsDomain.NewEnvelope(iv, sealed)
	if err != nil {
		return "", err
	}
	return envelope.String(), nil
}

// Decrypt parses and opens an envelope. Parsing errors wrap ErrMalformedEnvelope;
// a tag that does not verify returns ErrAuthenticationFailed.
func (s *secretsUseCase) Decrypt(ctx context.Context, envelope string) (string, error) {
	state := s.state.Load()
	if state == nil {
		return "", secretsDomain.ErrUninitialized
	}

	parsed, err := secretsDomain.ParseEnvelope(envelope)
	if err != nil {
		return "", err
	}

	plaintext, err := state.aead.Decrypt(parsed.Sealed(), parsed.IV, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Hash returns the SHA-256 digest of data as lowercase hex.
func (s *secretsUseCase) Hash(data string) string {
	return s.hashService.Hash([]byte(data))
}

// GenerateToken returns a hex token of byteLength random bytes.
func (s *secretsUseCase) GenerateToken(byteLength int) (string, error) {
	return s.tokenGenerator.Generate(byteLength)
}

// KeySource reports where the installed key came from, or KeySourceNone.
func (s *secretsUseCase) KeySource() secretsDomain.KeySource {
	state := s.state.Load()
	if state == nil {
		return secretsDomain.KeySourceNone
	}
	return state.source
}
