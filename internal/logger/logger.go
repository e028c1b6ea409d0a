// Package logger provides slog helpers for the app.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/ffacttt-hash/frontend/internal/env"
)

// New builds the process logger: human-readable text locally, JSON with
// source locations in production.
func New(e env.Environment, level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, e, level)
}

func NewWithWriter(w io.Writer, e env.Environment, level slog.Level) *slog.Logger {
	if e.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("err", "nil")
	}
	return slog.String("err", err.Error())
}

// Discard is used by tests and tools that don't want log output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
