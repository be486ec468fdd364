// Package logger constructs the root slog.Logger used across the
// application.
package logger

import (
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// New returns a structured logger writing to stderr. Debug enables verbose
// output and caller reporting.
func New(debug bool) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportCaller:    debug,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return slog.New(handler)
}
