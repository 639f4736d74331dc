// Package domain defines the envelope format and errors of the secrets service.
package domain

import (
	"github.com/aicoder/backend/internal/errors"
)

// Secrets service error definitions.
//
// Decryption failures are split into two kinds so callers can alert on tampering
// separately from garbage input. Neither error discloses which bytes were at fault.
var (
	// ErrMalformedEnvelope indicates the envelope is not three hex parts with a
	// 16-byte IV and a 16-byte authentication tag.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrAuthenticationFailed indicates the authentication tag did not verify
	// against the ciphertext and key. No plaintext is returned.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrUninitialized indicates an encrypt or decrypt call before Initialize.
	// This is a programming error, not a request error.
	ErrUninitialized = errors.Wrap(errors.ErrInternal, "secrets service not initialized")

	// ErrAlreadyInitialized indicates Initialize was called more than once.
	ErrAlreadyInitialized = errors.Wrap(errors.ErrInternal, "secrets service already initialized")

	// ErrEncryptionKeyRequired indicates production mode without ENCRYPTION_KEY.
	ErrEncryptionKeyRequired = errors.Wrap(
		errors.ErrInvalidInput,
		"ENCRYPTION_KEY environment variable required in production",
	)

	// ErrInvalidEncryptionKey indicates ENCRYPTION_KEY is not valid hex.
	ErrInvalidEncryptionKey = errors.Wrap(errors.ErrInvalidInput, "invalid encryption key encoding")

	// ErrInvalidKeySize indicates the key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidTokenLength indicates a non-positive token byte length.
	ErrInvalidTokenLength = errors.Wrap(errors.ErrInvalidInput, "token length must be positive")

	// ErrPasswordMismatch indicates a password does not match its hash.
	ErrPasswordMismatch = errors.Wrap(errors.ErrUnauthorized, "password mismatch")
)
