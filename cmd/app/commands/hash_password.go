package commands

import (
	"errors"
	"fmt"
	"io"

	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

// RunHashPassword prints the bcrypt hash of password.
func RunHashPassword(hasher secretsService.PasswordHasher, writer io.Writer, password string) error {
	if password == "" {
		return errors.New("password must not be empty")
	}

	hashed, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, _ = fmt.Fprintln(writer, hashed)
	return nil
}
