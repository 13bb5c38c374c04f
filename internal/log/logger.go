// Package log builds the slog loggers used by the kvsearch tools.
package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/andreyvit/kvsearch/internal/config"
)

// New creates a logger writing to w in the given format.
func New(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// FromConfig creates a logger for cfg.
func FromConfig(w io.Writer, cfg config.AppConfig) *slog.Logger {
	return New(w, cfg.LogFormat(), cfg.LogLevel())
}

// ParseLevel maps a level name to a slog.Level; unknown names mean INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
