// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/theirongolddev/foogie/internal/config"

	"gopkg.in/lumberjack.v2"
)

// Options adjusts Init beyond the config file.
type Options struct {
	Quiet  bool      // drop console output below error
	Stderr io.Writer // console destination, os.Stderr when nil
}

// Init builds a logger from cfg, installs it as the slog default and returns it.
// Console output is text; the optional rotating file gets JSON.
func Init(cfg config.LogConfig, opts Options) *slog.Logger {
	level := parseLevel(cfg.Level)

	console := opts.Stderr
	if console == nil {
		console = os.Stderr
	}
	consoleLevel := level
	if opts.Quiet {
		consoleLevel = slog.LevelError
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: consoleLevel}),
	}
	if cfg.File != "" {
		handlers = append(handlers, slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}, &slog.HandlerOptions{Level: level}))
	}

	l := slog.New(fanout(handlers))
	slog.SetDefault(l)
	l.Debug("logger initialized", "level", cfg.Level, "file", cfg.File)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
