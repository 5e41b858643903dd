// Package logging is the structured logger shared by the hunt phases. Every
// recovered failure is logged with its path and phase as fields.
package logging

import (
	"context"
)

// Level orders log severity; messages below a logger's level are dropped
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields are key/value pairs attached to one message
type Fields map[string]interface{}

// Logger is implemented by WriterLogger and NullLogger
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs msg with err under the "error" field
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger that adds fields to every message, such
	// as the phase a component runs in
	WithFields(fields Fields) Logger

	// Close flushes and releases the destination
	Close() error
}

// OrNull lets components accept a nil logger
func OrNull(l Logger) Logger {
	if l == nil {
		return NewNullLogger()
	}
	return l
}
