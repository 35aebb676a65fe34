package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq"

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNew_ConsoleAndFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "bot.log")
	var console bytes.Buffer

	log, closeFn := New(Options{
		Env:          "prod",
		ConsoleLevel: "warn",
		FileLevel:    "debug",
		File:         logFile,
		App:          "test-app",
		Console:      &console,
	})

	log.Debug("debug only in file")
	log.Warn("warn in both")

	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	file := readFile(t, logFile)
	if !strings.Contains(file, "debug only in file") {
		t.Error("file should contain debug message")
	}
	if !strings.Contains(file, "warn in both") {
		t.Error("file should contain warn message")
	}
	if !strings.Contains(file, `"app":"test-app"`) {
		t.Error("file should contain app field")
	}

	out := console.String()
	if strings.Contains(out, "debug only in file") {
		t.Error("console should skip debug message at warn level")
	}
	if !strings.Contains(out, "warn in both") {
		t.Error("console should contain warn message")
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	log, closeFn := New(Options{Env: "dev", App: "test-app", Console: &console})
	defer closeFn()

	log.Debug("hidden")
	log.Info("visible")

	if strings.Contains(console.String(), "hidden") {
		t.Error("default console level should be info")
	}
	if !strings.Contains(console.String(), "visible") {
		t.Error("console should contain info message")
	}
}

func TestRedaction(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "redacted.log")
	var console bytes.Buffer
	log, closeFn := New(Options{Env: "prod", File: logFile, App: "test-app", Console: &console})

	log.Info("api call",
		slog.String("token", "plain-secret-value"),
		slog.String("url", "https://api.telegram.org/bot"+testToken+"/getMe"),
		slog.Any("err", errors.New("post bot"+testToken+"/sendMessage: EOF")),
		slog.Group("req", slog.String("secret", "hook-secret")),
		slog.String("user", "ana"),
	)
	log.With(slog.String("webhook", "https://example.com/"+testToken)).Info("bound")

	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for name, out := range map[string]string{"file": readFile(t, logFile), "console": console.String()} {
		for _, leak := range []string{testToken, "plain-secret-value", "hook-secret"} {
			if strings.Contains(out, leak) {
				t.Errorf("%s output leaks %q", name, leak)
			}
		}
		if !strings.Contains(out, redacted) {
			t.Errorf("%s output should contain redaction placeholder", name)
		}
		if !strings.Contains(out, "ana") {
			t.Errorf("%s output should keep non-sensitive values", name)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelError,
	}
	for in, want := range cases {
		if got := ParseLevel(in, slog.LevelError); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanout(t *testing.T) {
	var info, warn bytes.Buffer
	h1 := slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn})

	l := slog.New(NewFanout(h1, h2)).With("k", "v").WithGroup("g")
	l.Info("only info")
	l.Warn("both")

	if !strings.Contains(info.String(), "only info") || !strings.Contains(info.String(), "both") {
		t.Errorf("info handler output: %q", info.String())
	}
	if strings.Contains(warn.String(), "only info") || !strings.Contains(warn.String(), "both") {
		t.Errorf("warn handler output: %q", warn.String())
	}
	if !strings.Contains(warn.String(), "k=v") {
		t.Errorf("attrs should reach every handler: %q", warn.String())
	}

	var sink bytes.Buffer
	f := NewFanout(failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}, slog.NewTextHandler(&sink, nil))
	err := slog.New(f).Handler().Handle(context.Background(), slog.Record{Message: "x", Level: slog.LevelInfo})
	if err == nil {
		t.Error("expected error from failing handler")
	}
	if !strings.Contains(sink.String(), "x") {
		t.Error("later handlers should still receive the record")
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger for bare context")
	}
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Error("expected stored logger")
	}
}
