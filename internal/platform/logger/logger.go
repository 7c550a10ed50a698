package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured logger. Production writes JSON at info level;
// every other environment writes human-readable text at debug level.
func New(production bool) *slog.Logger {
	return newWithWriter(os.Stdout, production)
}

func newWithWriter(w io.Writer, production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
