package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM with a 16-byte nonce.
//
// The nonce is handed to GCM directly (cipher.NewGCMWithNonceSize); nothing is
// derived from the key per call. A fresh nonce is read from crypto/rand for every
// encryption, so two encryptions of the same plaintext never share an IV.
//
// Security properties:
//   - 256-bit key
//   - 16-byte nonce (128 bits, randomly generated per encryption)
//   - 16-byte authentication tag (appended to ciphertext)
//
// Thread safety:
//
//	The cipher is stateless after construction and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
//
// The key must be exactly 32 bytes. The caller keeps ownership of key and may
// zero it once this returns; the expanded key schedule lives inside the block cipher.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != secretsDomain.KeySize {
		return nil, secretsDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, secretsDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with optional additional authenticated data.
//
// Returns the ciphertext with the 16-byte tag appended and the random nonce used.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt verifies the tag and decrypts ciphertext. No plaintext is returned when
// verification fails.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, secretsDomain.ErrMalformedEnvelope
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, secretsDomain.ErrAuthenticationFailed
	}
	return plaintext, nil
}
