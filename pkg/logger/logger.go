package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide JSON logger. Every line carries the
// service attribute so the api and migrate binaries can be told apart
// in aggregated output.
func New(service string, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", service)
}
