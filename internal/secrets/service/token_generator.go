package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

type randomTokenGenerator struct{}

// NewRandomTokenGenerator creates a token generator reading from crypto/rand.
func NewRandomTokenGenerator() TokenGenerator {
	return &randomTokenGenerator{}
}

// Generate returns byteLength random bytes, hex-encoded (2*byteLength characters).
func (g *randomTokenGenerator) Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", secretsDomain.ErrInvalidTokenLength
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
