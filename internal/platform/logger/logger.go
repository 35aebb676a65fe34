// Package logger builds the application's slog.Logger: a tinted console
// handler plus an optional rotated JSON file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options defines parameters for logger creation.
type Options struct {
	Env          string
	ConsoleLevel string // default: info
	FileLevel    string // default: debug
	File         string // empty disables file output
	App          string

	// Console overrides stdout, used by tests.
	Console io.Writer
}

var sensitiveKeys = []string{"token", "secret", "api_key", "password"}

// New creates the logger and returns a func releasing the log file.
// The returned func is never nil.
func New(o Options) (*slog.Logger, func() error) {
	console := o.Console
	if console == nil {
		console = os.Stdout
	}

	timeFormat := time.RFC3339
	if o.Env == "dev" {
		timeFormat = time.Kitchen
	}
	handlers := []slog.Handler{
		NewRedactingHandler(tint.NewHandler(console, &tint.Options{
			Level:      ParseLevel(o.ConsoleLevel, slog.LevelInfo),
			TimeFormat: timeFormat,
			NoColor:    o.Console != nil,
		}), sensitiveKeys),
	}

	closer := func() error { return nil }
	if o.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		closer = rotated.Close
		handlers = append(handlers, NewRedactingHandler(
			slog.NewJSONHandler(rotated, &slog.HandlerOptions{Level: ParseLevel(o.FileLevel, slog.LevelDebug)}),
			sensitiveKeys,
		))
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = NewFanout(handlers...)
	}

	l := slog.New(h).With(
		slog.String("app", o.App),
		slog.String("env", o.Env),
	)
	return l, closer
}

// ParseLevel maps debug/info/warn/error to a slog.Level, falling back to def.
func ParseLevel(s string, def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}
