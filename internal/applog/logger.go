// Package applog provides the structured logger shared across the
// supervision core. It wraps github.com/hashicorp/go-hclog directly,
// rather than behind a multi-sink logger abstraction, since this core
// has no need for more than one sink.
package applog

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the structured logging surface used by every component of the
// core. Fields are passed as alternating key/value pairs, matching
// hclog's Debug/Info/Warn/Error(msg, args...) calling convention.
type Logger interface {
	Named(name string) Logger
	With(args ...interface{}) Logger

	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

type logger struct {
	hl hclog.Logger
}

// New builds the root Logger for the supervisor process. Output defaults
// to stderr so stdout is left free for a wrapped process that might
// (incorrectly) share a console; the supervisor itself never writes
// protocol frames there.
func New(name string, level hclog.Level) Logger {
	return &logger{
		hl: hclog.New(&hclog.LoggerOptions{
			Name:            name,
			Level:           level,
			Output:          os.Stderr,
			IncludeLocation: true,
			JSONFormat:      true,
		}),
	}
}

// NewWithWriter builds a root Logger writing to an arbitrary sink, used by
// tests to assert on emitted lines.
func NewWithWriter(name string, level hclog.Level, w io.Writer) Logger {
	return &logger{
		hl: hclog.New(&hclog.LoggerOptions{
			Name:       name,
			Level:      level,
			Output:     w,
			JSONFormat: true,
		}),
	}
}

func (l *logger) Named(name string) Logger {
	return &logger{hl: l.hl.Named(name)}
}

func (l *logger) With(args ...interface{}) Logger {
	return &logger{hl: l.hl.With(args...)}
}

func (l *logger) Debug(msg string, args ...interface{}) { l.hl.Debug(msg, args...) }
func (l *logger) Info(msg string, args ...interface{})  { l.hl.Info(msg, args...) }
func (l *logger) Warn(msg string, args ...interface{})  { l.hl.Warn(msg, args...) }
func (l *logger) Error(msg string, args ...interface{}) { l.hl.Error(msg, args...) }

// Discard is a Logger that drops every message; used as a safe default
// when a component is constructed without an explicit logger.
func Discard() Logger {
	return &logger{hl: hclog.NewNullLogger()}
}
