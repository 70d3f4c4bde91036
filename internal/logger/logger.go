package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"notedash/internal/config"
)

var (
	singleton *slog.Logger
	once      sync.Once
)

// Init initializes the singleton logger from the provided config.
// It is thread-safe and idempotent - the first successful call wins,
// and subsequent calls return the same logger instance.
func Init(cfg config.Config) (*slog.Logger, error) {
	once.Do(func() {
		singleton = New(cfg, os.Stdout)
	})

	return singleton, nil
}

// New builds a logger writing to w using the level and format from cfg.
// Unknown levels fall back to info, unknown formats to JSON.
func New(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// L returns the singleton logger instance.
// Before Init it returns slog.Default so library code never has to nil-check.
func L() *slog.Logger {
	if singleton == nil {
		return slog.Default()
	}
	return singleton
}
