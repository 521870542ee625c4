// Package logger configures the controller's own structured logging:
// colored text on stderr for interactive use, with an optional rotating
// file for long-running dispatcher modes.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults, lumberjack semantics.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Config describes the controller log destination.
type Config struct {
	// Path is the rotating log file; empty means stderr only.
	Path       string
	Level      slog.Level
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a slog.Logger from the config. When running under a stdio
// dispatcher stdout belongs to the protocol, so everything goes to stderr
// and/or the rotating file.
func New(c Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}

	if c.Path == "" {
		return slog.New(NewColorTextHandler(os.Stderr, opts))
	}

	fileW := &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	return slog.New(slog.NewTextHandler(io.MultiWriter(fileW, os.Stderr), opts))
}

// SetDefault installs the configured logger process-wide.
func SetDefault(c Config) *slog.Logger {
	l := New(c)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name onto slog.Level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
