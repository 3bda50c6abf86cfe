// Package logging is the small leveled, structured logger used by the
// analyzer and the command line tools.
//
// Library code defaults to [NoOpLogger]; callers that want diagnostics pass a
// [Logger] through the functional options of the package they configure.
package logging

import (
	"fmt"
	"strings"
)

// Level represents log levels.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
}

// Fields represents structured logging fields.
type Fields map[string]any

// Logger defines the interface the analyzer packages log through.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields.
	WithFields(fields Fields) Logger

	// SetLevel sets the minimum log level.
	SetLevel(level Level)
}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Fields)        {}
func (NoOpLogger) Info(string, ...Fields)         {}
func (NoOpLogger) Warn(string, ...Fields)         {}
func (NoOpLogger) Error(error, string, ...Fields) {}
func (n NoOpLogger) WithFields(Fields) Logger     { return n }
func (NoOpLogger) SetLevel(Level)                 {}
