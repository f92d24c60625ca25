// Package logger configures zerolog for the service: JSON output in
// deployed environments, a console writer during local development.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// New builds the service logger. Development gets human-readable console
// output at debug level; every other environment logs JSON at info level.
func New(serviceName, environment string) *Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel

	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: l}
}

func (l *Logger) with(ctx zerolog.Context) *Logger {
	logger := ctx.Logger()
	return &Logger{Logger: logger}
}

// WithRequestID returns a logger with the request ID attached
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with(l.With().Str("request_id", requestID))
}

// WithComponent returns a logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return l.with(l.With().Str("component", component))
}

// WithEmployeeID returns a logger with the employee ID attached
func (l *Logger) WithEmployeeID(employeeID int64) *Logger {
	return l.with(l.With().Int64("employee_id", employeeID))
}
