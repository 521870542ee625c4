package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewStderrOnly(t *testing.T) {
	l := New(Config{Level: slog.LevelDebug})
	if l == nil {
		t.Fatal("expected logger")
	}
	l.Debug("stderr logger works")
}

func TestNewWithFileWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solarctl.log")
	l := New(Config{Path: path, Level: slog.LevelInfo})
	l.Info("file logger works", "k", "v")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output in file")
	}
}
