package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/aicoder/backend/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return commands.RunServer(ctx, cfg, version)
			},
		},
		{
			Name:  "check-config",
			Usage: "Validate the environment configuration and print a summary",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return commands.RunCheckConfig(cfg, commands.DefaultIO().Writer)
			},
		},
	}
}
