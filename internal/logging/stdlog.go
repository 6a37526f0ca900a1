package logging

import (
	"log/slog"
	"strings"
)

// slogWriter forwards standard log output to the default slog logger,
// picking the level from an ERROR/WARN/INFO prefix.
type slogWriter struct{}

func (w *slogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")

	switch {
	case strings.HasPrefix(msg, "ERROR "):
		slog.Error(strings.TrimPrefix(msg, "ERROR "))
	case strings.HasPrefix(msg, "WARN "):
		slog.Warn(strings.TrimPrefix(msg, "WARN "))
	case strings.HasPrefix(msg, "INFO "):
		slog.Info(strings.TrimPrefix(msg, "INFO "))
	default:
		slog.Debug(msg)
	}
	return len(p), nil
}
