package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secretsService "github.com/aicoder/backend/internal/secrets/service"
	secretsUseCase "github.com/aicoder/backend/internal/secrets/usecase"
)

// RunEncrypt seals plaintext and prints the resulting envelope.
func RunEncrypt(
	ctx context.Context,
	useCase secretsUseCase.SecretsUseCase,
	logger *slog.Logger,
	writer io.Writer,
	plaintext string,
) error {
	envelope, err := useCase.Encrypt(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	logger.Info("value encrypted", slog.String("key_source", string(useCase.KeySource())))
	_, _ = fmt.Fprintln(writer, envelope)
	return nil
}

// RunDecrypt opens envelope and prints the plaintext.
//
// Outside production the key is ephemeral, so only envelopes produced by the
// same process can be opened.
func RunDecrypt(
	ctx context.Context,
	useCase secretsUseCase.SecretsUseCase,
	writer io.Writer,
	envelope string,
) error {
	plaintext, err := useCase.Decrypt(ctx, envelope)
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}

	_, _ = fmt.Fprintln(writer, plaintext)
	return nil
}

// RunHash prints the hex SHA-256 digest of data. It needs no encryption key.
func RunHash(hashService secretsService.HashService, writer io.Writer, data string) error {
	_, _ = fmt.Fprintln(writer, hashService.Hash([]byte(data)))
	return nil
}

// RunGenerateToken prints a random token of 2*length hex characters.
func RunGenerateToken(generator secretsService.TokenGenerator, writer io.Writer, length int) error {
	token, err := generator.Generate(length)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, _ = fmt.Fprintln(writer, token)
	return nil
}
