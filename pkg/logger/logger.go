// Package logger defines the structured logging contract used across
// the FinHealth service. Implementations live in
// internal/infrastructure/monitoring; this package only carries the
// interface, field constructors and a no-op logger for tests.
package logger

import (
	"context"
	"time"
)

// Field is a single structured log attribute.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the context-aware structured logger used by every layer.
// Implementations extract the trace ID from ctx and attach it to each
// entry.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)
	Fatal(ctx context.Context, msg string, err error, fields ...Field)

	// WithComponent returns a child logger that tags every entry with
	// the component name.
	WithComponent(name string) Logger
}

// String constructs a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int constructs an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 constructs an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Float64 constructs a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Bool constructs a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration constructs a duration field rendered in milliseconds.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.Milliseconds()}
}

// Any constructs a field with an arbitrary value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// nopLogger discards everything. Used in tests and as a safe default.
type nopLogger struct{}

// NewNop returns a logger that discards all entries.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(context.Context, string, ...Field)        {}
func (nopLogger) Info(context.Context, string, ...Field)         {}
func (nopLogger) Warn(context.Context, string, ...Field)         {}
func (nopLogger) Error(context.Context, string, error, ...Field) {}
func (nopLogger) Fatal(context.Context, string, error, ...Field) {}
func (nopLogger) WithComponent(string) Logger                    { return nopLogger{} }
