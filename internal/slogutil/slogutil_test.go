package slogutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := LevelFromString(tc.input); got != tc.expected {
				t.Errorf("LevelFromString(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(&buf, slog.LevelInfo, "json").Info("hello", "key", "value")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("json format produced non-JSON output: %q", buf.String())
	}

	buf.Reset()
	NewLogger(&buf, slog.LevelInfo, "text").Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("text format missing attribute: %q", buf.String())
	}
}

func TestNewLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "text")

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record not suppressed at warn level: %q", buf.String())
	}

	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("warn record suppressed at warn level")
	}
}
