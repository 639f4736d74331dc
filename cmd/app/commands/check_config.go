package commands

import (
	"fmt"
	"io"

	"github.com/aicoder/backend/internal/config"
)

// RunCheckConfig validates cfg and prints a summary that never includes secret values.
func RunCheckConfig(cfg *config.Config, writer io.Writer) error {
	if err := cfg.Validate(); err != nil {
		WriteConfigErrors(writer, err)
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	keySource := "ephemeral"
	if cfg.IsProduction() {
		keySource = "provided"
		if cfg.KMSKeyURI != "" {
			keySource = "kms"
		}
	}

	_, _ = fmt.Fprintln(writer, "Configuration is valid")
	_, _ = fmt.Fprintf(writer, "  environment:     %s\n", cfg.Environment)
	_, _ = fmt.Fprintf(writer, "  listen address:  %s:%d\n", cfg.ServerHost, cfg.ServerPort)
	_, _ = fmt.Fprintf(writer, "  encryption key:  %s\n", keySource)
	_, _ = fmt.Fprintf(writer, "  ai provider:     %t\n", cfg.HasAIProvider())
	_, _ = fmt.Fprintf(writer, "  metrics enabled: %t\n", cfg.MetricsEnabled)
	return nil
}
