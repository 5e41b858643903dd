package logging

import "context"

var _ Logger = (*NullLogger)(nil)

// NullLogger drops every message. It backs components built without a
// logger, mostly in tests.
type NullLogger struct{}

// NewNullLogger creates a null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(context.Context, string, Fields) {}

func (l *NullLogger) Info(context.Context, string, Fields) {}

func (l *NullLogger) Warn(context.Context, string, Fields) {}

func (l *NullLogger) Error(context.Context, string, error, Fields) {}

func (l *NullLogger) WithFields(Fields) Logger { return l }

func (l *NullLogger) Close() error { return nil }
