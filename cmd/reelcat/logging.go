package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vmunix/reelcat/internal/config"
)

func parseLogLevel(level string) slog.Level {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the CLI logger. With log.file set, records go to a
// rotated file only so they never interleave with command output.
func newLogger(cfg config.LogConfig, override string, stderr io.Writer) (*slog.Logger, io.Closer) {
	level := cfg.Level
	if override != "" {
		level = override
	}
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}

	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		log := slog.New(slog.NewTextHandler(stderr, opts))
		log.Warn("could not create log directory, logging to stderr", "path", cfg.File, "error", err)
		return log, nopCloser{}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	return slog.New(slog.NewTextHandler(fileWriter, opts)), fileWriter
}
