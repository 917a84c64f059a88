// Package logger builds the zerolog logger shared by all services.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with the service name. Unknown levels
// fall back to info.
func New(service string, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
