// Package log provides a structured logging interface for the spatcv
// pipeline stages.
//
// This package defines a minimal, slog-compatible logging interface that
// allows for flexible implementation switching while providing
// pipeline-specific structured logging capabilities. The interface is
// designed to integrate seamlessly with Go's standard log/slog package.
//
// Key features:
//   - slog-compatible interface for future-proofing
//   - pipeline-specific structured attributes (stages, data shapes, metrics)
//   - Context-aware logging with field chaining
//   - Stack traces from cockroachdb/errors surfaced as attributes
//   - Test-friendly with configurable output destinations
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.StageKey, log.StageBoost,
//	    log.SeedKey, 42,
//	)
//	logger.Info("Training started",
//	    log.OperationKey, "train",
//	    log.SamplesKey, 1000,
//	    log.FeaturesKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog.
//
// The interface is implementation-agnostic, enabling switching between
// logging backends while maintaining a consistent API. It supports method
// chaining through With, allowing creation of contextual loggers with
// pre-populated fields.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	//
	// Example:
	//
	//	logger.Debug("Permutation batch finished",
	//	    "batch", 4,
	//	    "draws", 2500,
	//	)
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//
	//	logger.Info("Early stopping triggered",
	//	    log.BestIterationKey, 137,
	//	    log.ValidationMetricKey, 0.042,
	//	)
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	// Warnings indicate advisory conditions such as a weak driver-layer
	// correlation that don't stop the pipeline.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If an error value is provided as a field, stack trace information
	// may be automatically included by the handler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	//
	// Example:
	//
	//	stageLogger := logger.With(log.StageKey, log.StageCV)
	//	stageLogger.Info("Assigning folds")  // carries the stage field
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to avoid building expensive attribute values that would be
	// discarded.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
// It allows dependency injection and testing with different logger
// implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for loggers from this provider.
	SetLevel(level Level)
}
