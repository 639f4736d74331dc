package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	secretsDomain "github.com/aicoder/backend/internal/secrets/domain"
	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

// RunCreateEncryptionKey generates a random 32-byte key and prints it as an
// ENCRYPTION_KEY line. When kmsKeyURI is set the key is wrapped by that KMS
// key first and the matching KMS_KEY_URI line is printed too.
//
// Key material is zeroed from memory after encoding.
func RunCreateEncryptionKey(
	ctx context.Context,
	kmsService secretsService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	key := make([]byte, secretsDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer secretsDomain.Zero(key)

	if kmsKeyURI == "" {
		logger.Info("generated plaintext encryption key")
		_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", hex.EncodeToString(key))
		return nil
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to wrap encryption key with KMS: %w", err)
	}

	logger.Info("generated KMS-wrapped encryption key")
	_, _ = fmt.Fprintf(writer, "ENCRYPTION_KEY=\"%s\"\n", hex.EncodeToString(wrapped))
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	return nil
}
