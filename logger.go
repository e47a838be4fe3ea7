package mixgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with mixgo-specific context.
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
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithComponents adds a component count field to the logger.
func (l *Logger) WithComponents(n int) *Logger {
	return &Logger{Logger: l.Logger.With("components", n)}
}

// WithWorkers adds a worker count field to the logger.
func (l *Logger) WithWorkers(w int) *Logger {
	return &Logger{Logger: l.Logger.With("workers", w)}
}

// LogValidation logs a request validation failure.
func (l *Logger) LogValidation(ctx context.Context, err error) {
	l.WarnContext(ctx, "request validation failed", "error", err)
}

// LogRun logs the outcome of an enumeration run.
func (l *Logger) LogRun(ctx context.Context, processed, valid, stored uint64, cancelled bool, elapsed time.Duration) {
	if cancelled {
		l.InfoContext(ctx, "run cancelled",
			"processed", processed,
			"valid", valid,
			"stored", stored,
			"elapsed", elapsed,
		)
		return
	}
	l.InfoContext(ctx, "run completed",
		"processed", processed,
		"valid", valid,
		"stored", stored,
		"elapsed", elapsed,
	)
}

// LogExport logs a result export operation.
func (l *Logger) LogExport(ctx context.Context, target string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"target", target,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "export completed",
		"target", target,
		"rows", rows,
	)
}
