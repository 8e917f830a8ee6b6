// Package logging builds the slog loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/MrJamesThe3rd/pocket/internal/config"
)

// New returns a logger writing to stdout in the configured format and level.
func New(cfg *config.Config) *slog.Logger {
	return slog.New(newHandler(os.Stdout, cfg.Log.Format, cfg.LogLevel())).
		With("app", cfg.App.Name)
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// NewTerminal returns a colourised logger for interactive commands.
func NewTerminal(w io.Writer, prefix string, level slog.Level) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           log.Level(level),
	})

	return slog.New(handler)
}
