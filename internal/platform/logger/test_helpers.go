package logger

import (
	"io"
	"log/slog"
)

// NewTestLogger returns a logger that discards everything. Tests use it
// wherever a component requires a non-nil *slog.Logger.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
