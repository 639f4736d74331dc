package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
)

// BcryptPasswordHasher hashes passwords with bcrypt at a fixed cost (BCRYPT_ROUNDS).
type BcryptPasswordHasher struct {
	cost int
}

// NewBcryptPasswordHasher creates a hasher. cost must be within bcrypt's
// [MinCost, MaxCost]; configuration narrows it further to [10, 15].
func NewBcryptPasswordHasher(cost int) (*BcryptPasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", cost)
	}
	return &BcryptPasswordHasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of password.
func (h *BcryptPasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare returns nil if password matches hash and ErrPasswordMismatch otherwise.
func (h *BcryptPasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return secretsDomain.ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("failed to compare password: %w", err)
	}
	return nil
}
