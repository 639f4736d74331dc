// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aicoder/backend/internal/app"
	"github.com/aicoder/backend/internal/config"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// WriteConfigErrors prints one line per invalid variable. It returns false
// when err carries no field errors.
func WriteConfigErrors(w io.Writer, err error) bool {
	lines := config.FieldErrors(err)
	if len(lines) == 0 {
		return false
	}
	_, _ = fmt.Fprintln(w, "Invalid environment configuration:")
	for _, line := range lines {
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}
	return true
}
