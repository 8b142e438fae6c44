package slogutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func textLogger(t *testing.T, w io.Writer, level slog.Level) *slog.Logger {
	t.Helper()
	logger, err := New(w, level, FormatText)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return logger
}

func TestHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := textLogger(t, &buf, slog.LevelInfo)

	logger.Info("Loaded project", "packs", 42, "root", "/repo")

	output := buf.String()
	if !strings.Contains(output, "[info] Loaded project | packs=42 root=/repo\n") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestHandler_QuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger := textLogger(t, &buf, slog.LevelInfo)

	logger.Info("msg", "error", "no such file", "empty", "")

	output := buf.String()
	if !strings.Contains(output, `error="no such file"`) {
		t.Errorf("expected quoted error, got: %s", output)
	}
	if !strings.Contains(output, `empty=""`) {
		t.Errorf("expected quoted empty value, got: %s", output)
	}
}

func TestHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := textLogger(t, &buf, slog.LevelInfo).
		With("run_id", "abc").
		WithGroup("cache")

	logger.Info("stats", "hits", 3, slog.Group("disk", "entries", 7))

	output := buf.String()
	for _, want := range []string{"run_id=abc", "cache.hits=3", "cache.disk.entries=7"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := textLogger(t, &buf, slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should be filtered")
	}
	if !strings.Contains(output, "[warn] warn message") {
		t.Error("warn message should be included")
	}
	if !strings.Contains(output, "[error] error message") {
		t.Error("error message should be included")
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, slog.LevelInfo, FormatJSON)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hello", "n", 1)

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("msg = %v", rec["msg"])
	}

	if _, err := New(&buf, slog.LevelInfo, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbose  bool
		quiet    bool
		expected slog.Level
	}{
		{false, false, slog.LevelWarn},
		{true, false, slog.LevelDebug},
		{false, true, slog.Level(100)},
		{true, true, slog.Level(100)},
	}

	for _, tt := range tests {
		got := LevelFromVerbosity(tt.verbose, tt.quiet)
		if got != tt.expected {
			t.Errorf("LevelFromVerbosity(%v, %v) = %v, want %v", tt.verbose, tt.quiet, got, tt.expected)
		}
	}
}

func TestNewDiscardLogger(t *testing.T) {
	logger := NewDiscardLogger()

	logger.Debug("debug")
	logger.Error("error")
}
