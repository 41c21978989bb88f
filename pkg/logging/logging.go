// Package logging builds the zerolog loggers used by the fsbx commands.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported log formats
const (
	FormatPlain = "plain"
	FormatText  = "text"
	FormatJSON  = "json"
)

// NewWriter wraps w according to format. Plain and text produce a console
// writer, json passes records through unchanged.
func NewWriter(w io.Writer, format string) (io.Writer, error) {
	switch strings.ToLower(format) {
	case FormatPlain, FormatText, "":
		return newConsoleWriter(w), nil
	case FormatJSON:
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

func newConsoleWriter(w io.Writer) *zerolog.ConsoleWriter {
	return &zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			if ll, ok := i.(string); ok {
				return strings.ToUpper(ll)
			}
			return "????"
		},
	}
}

// New returns a timestamped logger writing to w at the given level.
func New(w io.Writer, format, level string) (zerolog.Logger, error) {
	writer, err := NewWriter(w, format)
	if err != nil {
		return zerolog.Nop(), err
	}

	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("failed to parse log level: %w", err)
	}

	return zerolog.New(writer).Level(logLevel).With().Timestamp().Logger(), nil
}

// Validate reports whether format and level are accepted by New
func Validate(format, level string) error {
	_, err := New(io.Discard, format, level)
	return err
}
