package app

import (
	"context"
	"fmt"

	secretsService "github.com/aicoder/backend/internal/secrets/service"
	secretsUseCase "github.com/aicoder/backend/internal/secrets/usecase"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() secretsService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = secretsService.NewKMSService()
	})
	return c.kmsService
}

// PasswordHasher returns the bcrypt password hasher using BCRYPT_ROUNDS.
func (c *Container) PasswordHasher() (secretsService.PasswordHasher, error) {
	var err error
	c.passwordHasherInit.Do(func() {
		c.passwordHasher, err = secretsService.NewBcryptPasswordHasher(c.config.BcryptRounds)
		if err != nil {
			c.setInitError("passwordHasher", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("passwordHasher"); storedErr != nil {
		return nil, storedErr
	}
	return c.passwordHasher, nil
}

// SecretsUseCase returns the secrets service, initialized with the configured key.
//
// In production a missing or invalid key is returned as an error and the
// container never hands out an uninitialized service.
func (c *Container) SecretsUseCase(ctx context.Context) (secretsUseCase.SecretsUseCase, error) {
	var err error
	c.secretsUseCaseInit.Do(func() {
		c.secretsUseCase, err = c.initSecretsUseCase(ctx)
		if err != nil {
			c.setInitError("secretsUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretsUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretsUseCase, nil
}

// initSecretsUseCase creates the secrets use case and installs its key.
func (c *Container) initSecretsUseCase(ctx context.Context) (secretsUseCase.SecretsUseCase, error) {
	baseUseCase := secretsUseCase.NewSecretsUseCase(
		c.KMSService(),
		secretsService.NewSHA256HashService(),
		secretsService.NewRandomTokenGenerator(),
		c.Logger(),
	)

	keyConfig := secretsUseCase.KeyConfig{
		Production:    c.config.IsProduction(),
		EncryptionKey: c.config.EncryptionKey,
		KMSKeyURI:     c.config.KMSKeyURI,
	}
	if err := baseUseCase.Initialize(ctx, keyConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize secrets service: %w", err)
	}

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secrets use case: %w", err)
		}
		return secretsUseCase.NewSecretsUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
