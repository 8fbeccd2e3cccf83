// Package logging provides structured logging for modir built on log/slog.
//
// Commands create one logger at startup and hand component-scoped children
// to the packages doing the work. Debug output is gated by the root
// --debug flag rather than ambient environment state.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with component scoping.
type Logger struct {
	logger    *slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Debug  bool
	Format string // "text" or "json"
	Output io.Writer
}

// DefaultConfig returns the default logger configuration. Output goes to
// stderr so command output on stdout stays machine-readable.
func DefaultConfig() *Config {
	return &Config{
		Debug:  false,
		Format: "text",
		Output: os.Stderr,
	}
}

// New creates a structured logger from the given configuration.
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// WithComponent returns a child logger that tags every record with the
// component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		logger:    l.logger.With(slog.String("component", component)),
		component: component,
	}
}

// With returns a child logger carrying additional key/value fields.
func (l *Logger) With(fields ...any) *Logger {
	return &Logger{
		logger:    l.logger.With(fields...),
		component: l.component,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, fields...)
}

// Error logs an error message. The error is attached as a field when
// non-nil.
func (l *Logger) Error(err error, msg string, fields ...any) {
	if err != nil {
		fields = append(fields, slog.String("error", err.Error()))
	}
	l.logger.Error(msg, fields...)
}

// Discard returns a logger that drops everything. Used by tests and by
// library callers that do not care about log output.
func Discard() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
