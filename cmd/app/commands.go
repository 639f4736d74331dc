package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/aicoder/backend/cmd/app/commands"
	"github.com/aicoder/backend/internal/app"
	"github.com/aicoder/backend/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands(version)...)
	return cmds
}

// loadConfig runs the configuration loader. Invalid variables are listed on
// stderr before the error is returned.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		commands.WriteConfigErrors(os.Stderr, err)
		return nil, err
	}
	return cfg, nil
}

// loadContainer loads the configuration and builds a container around it.
func loadContainer(version string) (*app.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewContainer(cfg, version), nil
}

// newCLILogger logs to stderr so command output on stdout stays machine readable.
func newCLILogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
