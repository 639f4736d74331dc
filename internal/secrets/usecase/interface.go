package usecase

import (
	"context"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

// KeyConfig carries the key material settings read from configuration.
type KeyConfig struct {
	// Production selects the strict key path: a provided key is mandatory.
	Production bool

	// EncryptionKey is the hex-encoded 32-byte key, or the hex-encoded KMS
	// ciphertext of that key when KMSKeyURI is set.
	EncryptionKey string

	// KMSKeyURI is an optional gocloud.dev secrets URL used to unwrap EncryptionKey.
	KMSKeyURI string
}

// SecretsUseCase defines the operations of the secrets service.
//
// The service starts uninitialized. Initialize installs exactly one key; Encrypt
// and Decrypt fail with ErrUninitialized until it succeeds. Hash and GenerateToken
// need no key.
type SecretsUseCase interface {
	// Initialize installs the service key. A second call returns ErrAlreadyInitialized
	// and keeps the existing key.
	Initialize(ctx context.Context, keyConfig KeyConfig) error

	// Encrypt seals plaintext under a fresh random IV and returns the envelope
	// hex(iv):hex(tag):hex(ciphertext).
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt opens an envelope produced by Encrypt under the same key.
	Decrypt(ctx context.Context, envelope string) (string, error)

	// Hash returns the lowercase hex SHA-256 digest of data.
	Hash(data string) string

	// GenerateToken returns byteLength random bytes, hex-encoded.
	GenerateToken(byteLength int) (string, error)

	// KeySource reports where the installed key came from.
	KeySource() secretsDomain.KeySource
}
