package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/aicoder/backend/cmd/app/commands"
	secretsService "github.com/aicoder/backend/internal/secrets/service"
)

func getKeyCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a new 32-byte ENCRYPTION_KEY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "kms-key-uri",
					Aliases: []string{"k"},
					Usage:   "KMS key URI used to wrap the key (e.g. awskms:///alias/..., base64key://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateEncryptionKey(
					ctx,
					secretsService.NewKMSService(),
					newCLILogger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "encrypt",
			Usage: "Encrypt a value with the configured key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "plaintext",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Value to encrypt",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer(version)
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SecretsUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunEncrypt(
					ctx,
					useCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("plaintext"),
				)
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt an envelope with the configured key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "envelope",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Envelope in iv:tag:ciphertext hex form",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer(version)
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.SecretsUseCase(ctx)
				if err != nil {
					return err
				}

				return commands.RunDecrypt(ctx, useCase, commands.DefaultIO().Writer, cmd.String("envelope"))
			},
		},
		{
			Name:  "hash",
			Usage: "Print the SHA-256 hex digest of a value",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "data",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Value to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHash(
					secretsService.NewSHA256HashService(),
					commands.DefaultIO().Writer,
					cmd.String("data"),
				)
			},
		},
		{
			Name:  "generate-token",
			Usage: "Print a random hex token",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "length",
					Aliases: []string{"l"},
					Value:   32,
					Usage:   "Number of random bytes (the token has twice as many hex characters)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateToken(
					secretsService.NewRandomTokenGenerator(),
					commands.DefaultIO().Writer,
					int(cmd.Int("length")),
				)
			},
		},
		{
			Name:  "hash-password",
			Usage: "Print the bcrypt hash of a password using BCRYPT_ROUNDS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "password",
					Required: true,
					Usage:    "Password to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := loadContainer(version)
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				hasher, err := container.PasswordHasher()
				if err != nil {
					return err
				}

				return commands.RunHashPassword(hasher, commands.DefaultIO().Writer, cmd.String("password"))
			},
		},
	}
}
