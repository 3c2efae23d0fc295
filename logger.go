package quarry

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with quarry-specific context.
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

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithColumn adds a column name field to the logger.
func (l *Logger) WithColumn(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", name),
	}
}

// WithSegment adds a segment ID field to the logger.
func (l *Logger) WithSegment(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", id),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// LogEvaluate logs a predicate evaluation.
func (l *Logger) LogEvaluate(ctx context.Context, column string, rows uint32, selected uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "predicate evaluation failed",
			"column", column,
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "predicate evaluated",
			"column", column,
			"rows", rows,
			"selected", selected,
		)
	}
}

// LogSegmentLoad logs an index segment load.
func (l *Logger) LogSegmentLoad(ctx context.Context, bytes int64, terms int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "segment load failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "segment loaded",
			"bytes", bytes,
			"terms", terms,
		)
	}
}

// LogAggregate logs a hash aggregation run.
func (l *Logger) LogAggregate(ctx context.Context, partitions, groups int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "aggregation failed",
			"partitions", partitions,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "aggregation completed",
			"partitions", partitions,
			"groups", groups,
		)
	}
}
