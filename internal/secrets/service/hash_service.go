package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256HashService renders SHA-256 digests as 64 lowercase hex characters.
type SHA256HashService struct{}

// NewSHA256HashService returns the SHA-256 hasher.
func NewSHA256HashService() *SHA256HashService {
	return &SHA256HashService{}
}

func (SHA256HashService) Hash(value []byte) string {
	sum := sha256.Sum256(value)
	return hex.EncodeToString(sum[:])
}
