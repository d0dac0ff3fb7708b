// Package log carries the structured-logging conventions shared by the
// binaries and the HTTP layer: slog setup, common field names, and
// request logging.
package log

import (
	"log/slog"
	"os"
)

// Setup initializes the process-wide structured logger and returns it.
func Setup(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// ForComponent returns the default logger tagged with a component name.
func ForComponent(component string) *slog.Logger {
	return slog.Default().With(FieldComponent, component)
}
