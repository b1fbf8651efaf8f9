// Package zerologger adapts a zerolog.Logger to the gateway Logger
// interface.
package zerologger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{log: log}
}

// NewConsole builds a human readable logger for interactive use.
func NewConsole(app string) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return &Logger{
		log: zerolog.New(output).With().Timestamp().Str("app", app).Logger(),
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}
