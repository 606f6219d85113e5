// Package logger provides opinionated logging for the keep system.
//
// Services log structured JSON; CLI surfaces use the pretty handler. Both
// produce a *slog.Logger so the rest of the codebase depends only on the
// standard structured logging interface.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charm "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	writers []io.Writer
}

// New creates a *slog.Logger. With no options it writes text logs at Info
// level to stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.writers) == 0 {
		cfg.writers = []io.Writer{os.Stdout}
	}

	w := cfg.writers[0]
	if len(cfg.writers) > 1 {
		w = io.MultiWriter(cfg.writers...)
	}

	var handler slog.Handler
	switch {
	case cfg.pretty:
		charmLogger := charm.NewWithOptions(w, charm.Options{
			Level:           charmLevel(cfg.level),
			ReportCaller:    cfg.source,
			ReportTimestamp: true,
		})
		handler = charmLogger
	case cfg.json:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     cfg.level,
			AddSource: cfg.source,
		})
	}

	return slog.New(handler)
}

// Nop returns a logger that discards everything. Useful as a default for
// components that accept an optional logger.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

func charmLevel(level slog.Level) charm.Level {
	switch {
	case level <= slog.LevelDebug:
		return charm.DebugLevel
	case level <= slog.LevelInfo:
		return charm.InfoLevel
	case level <= slog.LevelWarn:
		return charm.WarnLevel
	default:
		return charm.ErrorLevel
	}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
