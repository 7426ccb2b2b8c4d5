// Package logging builds the charmbracelet loggers used across docflow and
// carries them through context.Context.
package logging

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// New creates a logger that writes to w at the given level.
// Timestamps are formatted as "HH:MM:SS.ms".
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// Discard returns a logger that drops everything. Useful as a default for
// components constructed without a logger and in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a new context with the given logger attached.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from ctx, falling back to log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
