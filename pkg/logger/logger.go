// Package logger builds the zerolog loggers used across the tool.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sherine-k/pickups/pkg/config"
)

// New returns a logger for the given component writing to stderr.
// Chart output owns stdout.
func New(cfg config.Logging, component string) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg, component)
}

// NewWithWriter returns a logger for the given component writing to w
func NewWithWriter(w io.Writer, cfg config.Logging, component string) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
}
