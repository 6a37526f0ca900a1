// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelOff is higher than any standard level and disables logging.
const LevelOff = slog.Level(100)

// NewHandler returns the console handler used by the command line tool.
func NewHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
}

// Setup installs a tint logger writing to w as the default and returns it.
// The standard log package is redirected into it so that libraries logging
// through log end up in the same stream.
func Setup(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	logger := slog.New(NewHandler(w, level, noColor))
	slog.SetDefault(logger)

	lw := &slogWriter{}
	log.Default().SetOutput(lw)
	log.SetOutput(lw)
	log.SetFlags(0)

	return logger
}

// ParseLevel accepts debug, info, warn, error or off, ignoring case.
func ParseLevel(input string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", input)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
