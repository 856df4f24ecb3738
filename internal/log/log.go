// Package log provides structured logging for go-eyemouse.
// It wraps slog so every binary and package logs the same way.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
	level  slog.LevelVar
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unknown values fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global logger with the specified level.
// Later calls only change the level.
func Init(lvl string) {
	level.Set(ParseLevel(lvl))
	once.Do(func() {
		logger = newLogger(os.Stderr, &level, os.Getenv("GO_ENV") == "production")
		slog.SetDefault(logger)
	})
}

// newLogger builds a text logger, or a JSON one in production.
func newLogger(w io.Writer, lvl slog.Leveler, production bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// L returns the global logger instance.
func L() *slog.Logger {
	once.Do(func() {
		logger = newLogger(os.Stderr, &level, os.Getenv("GO_ENV") == "production")
		slog.SetDefault(logger)
	})
	return logger
}

// Component returns a logger tagged with the given component name.
func Component(name string) *slog.Logger {
	return L().With("component", name)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
