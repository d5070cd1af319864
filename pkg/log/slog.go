package log

import (
	"context"
	"log/slog"
	"sync"
)

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	inner *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.inner.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.inner.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.inner.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.inner.Error(msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{inner: l.inner.With(fields...)}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.inner.Enabled(ctx, slog.Level(level))
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider
)

// SetProvider replaces the process-wide logger provider. Tests install a
// TestLoggerProvider here to capture output.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetLogger returns the default logger. When no provider has been installed,
// records go through slog.Default().
func GetLogger() Logger {
	providerMu.RLock()
	p := defaultProvider
	providerMu.RUnlock()

	if p != nil {
		return p.GetLogger()
	}
	return &slogLogger{inner: slog.Default()}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	p := defaultProvider
	providerMu.RUnlock()

	if p != nil {
		return p.GetLoggerWithName(name)
	}
	return &slogLogger{inner: slog.Default().With(ComponentKey, name)}
}
