// Package logging builds the structured loggers used by the engine and the
// command line tools.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format is the log output encoding.
type Format string

const (
	// FormatText writes logfmt-style key=value lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// New creates a logger writing to stderr, so stdout stays free for
// evaluation output. The "error" key is renamed to "err".
func New(level slog.Level, format Format) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts "debug", "info", "warn" or "error" into a level. The
// empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// ParseFormat converts "text" or "json" into a Format. The empty string
// means text.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "TEXT", "":
		return FormatText, nil
	case "json", "JSON":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", s)
	}
}
