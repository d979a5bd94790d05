package seqstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with seqstore-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewConsoleLogger creates a Logger with colorized output for terminals.
func NewConsoleLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithSource adds the source name to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// LogOpen logs the construction of a store.
func (l *Logger) LogOpen(ctx context.Context, format string, hint ProviderHint, elapsed time.Duration, err error) {
	if err != nil {
		l.DebugContext(ctx, "open failed",
			"format", format,
			"hint", hint.String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "store opened",
		"format", format,
		"hint", hint.String(),
		"elapsed", elapsed,
	)
}

// LogFallback logs a provider hint that could not be honored.
func (l *Logger) LogFallback(ctx context.Context, requested, used ProviderHint, reason string) {
	l.WarnContext(ctx, "provider hint not supported by source",
		"requested", requested.String(),
		"used", used.String(),
		"reason", reason,
	)
}

// LogClose logs the release of a store.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.WarnContext(ctx, "close failed", "error", err)
		return
	}
	l.DebugContext(ctx, "store closed")
}
