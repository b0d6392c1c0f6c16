// Package log provides the structured logging interface used across pumpit.
//
// The Logger interface is slog-compatible so that estimators and pipeline
// stages do not depend on a concrete backend. The CLI installs a
// zerolog-backed provider; tests use TestLogger to capture JSON lines.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("experiment").With(
//	    log.ModelNameKey, "RandomForestClassifier",
//	)
//	logger.Info("fold scored",
//	    log.FoldKey, 3,
//	    log.AccuracyKey, 0.79,
//	)
package log

import (
	"context"
	"sync"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key-value pairs. Error values are
// rendered with their message; backends that understand cockroachdb
// errors may add the stack trace.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//   logger.Info("design matrix built",
	//       log.SamplesKey, 59400,
	//       log.FeaturesKey, 96,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	//
	// Example:
	//   logger.Error("cross-validation failed",
	//       "error", err,
	//       log.FoldKey, 2,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// LoggerProvider hands out component loggers that share one backend.
type LoggerProvider interface {
	// GetLogger returns the root logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel changes the minimum level of every logger from this provider.
	SetLevel(level Level)
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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

var (
	providerMu     sync.RWMutex
	globalProvider LoggerProvider
)

// SetProvider installs the process-wide provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

// GetProvider returns the process-wide provider. Until SetProvider is
// called, loggers are discarded at every level below error.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	p := globalProvider
	providerMu.RUnlock()
	if p != nil {
		return p
	}

	providerMu.Lock()
	defer providerMu.Unlock()
	if globalProvider == nil {
		globalProvider = NewZerologProvider(LevelError, nil)
	}
	return globalProvider
}

// GetLogger returns the root logger of the process-wide provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a component logger of the process-wide provider.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}
