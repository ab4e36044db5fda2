package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds the process logger. format is "json" or "console".
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with a custom destination.
func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	out := w
	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
