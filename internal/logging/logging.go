// Package logging adapts zerolog to the leveled map-fields logger interface
// shared by the transport and REST layers.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger.
type Logger struct {
	log zerolog.Logger
}

// New creates a logger writing to w at the given level. When pretty is set,
// output uses the human-readable console format instead of JSON.
func New(w io.Writer, level zerolog.Level, pretty bool) *Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return &Logger{
		log: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

// Debug logs a debug message with fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

// Info logs an info message with fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

// Warn logs a warning message with fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

// Error logs an error message with fields.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log.Error().Fields(fields).Msg(msg)
}
