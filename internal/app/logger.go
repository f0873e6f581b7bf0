package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/studybuddy/internal/config"
)

// NewLogger creates a *slog.Logger writing to w based on the provided LogConfig
// and sets it as the default logger via slog.SetDefault.
//
// Format "json" produces structured JSON output.
// Format "text" produces human-readable output with source info.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	logger := slog.New(newHandler(cfg, w))
	slog.SetDefault(logger)
	return logger
}

func newHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// openLogOutput returns where log records go. The REPL owns stdout, so logs
// default to stderr; a configured file is opened in append mode.
func openLogOutput(cfg config.LogConfig) (io.Writer, func() error, error) {
	if cfg.File == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
