// Package telemetry provides the structured logger constructor used by
// sync, shm and the root resource package; each caller builds its own
// component-scoped logger.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns a console-formatted zerolog.Logger scoped to component.
// Callers needing a different sink (tests, production JSON output) build
// their own zerolog.Logger and pass it through a WithLogger option instead
// of calling this constructor.
func NewLogger(component string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Discard returns a logger that drops every event, for callers (such as
// tests) that pass it through a WithLogger option to silence output.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}
