package logger

import (
	"log/slog"
	"os"
	"strings"
)

// HandlerFunc builds a slog.Handler for the given minimum level.
type HandlerFunc func(level slog.Level) slog.Handler

func New(level string, handler HandlerFunc) *slog.Logger {
	h := handler(ParseLevel(level))
	return slog.New(h)
}

// NewConsoleHandler writes human readable text to stderr, used by the CLI.
func NewConsoleHandler(level slog.Level) slog.Handler {
	return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
