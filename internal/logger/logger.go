// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// New returns a JSON zerolog.Logger on stdout at info level.
// Call sites should use .Stack() on error events to include stacks.
func New(serviceName string) zerolog.Logger {
	return NewWithLevel(serviceName, "info", os.Stdout)
}

// NewWithLevel returns a logger writing to w at the named level. Unknown levels fall
// back to info.
func NewWithLevel(serviceName, level string, w io.Writer) zerolog.Logger {
	// Marshal pkg/errors stack traces, attaching one to plain errors when .Stack() is used.
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		type stackTracer interface{ StackTrace() pkgerrors.StackTrace }
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger on stderr for the CLI.
func NewConsole(serviceName, level string) zerolog.Logger {
	return NewWithLevel(serviceName, level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
