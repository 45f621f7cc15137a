package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitFileGetsDebug(t *testing.T) {
	var buf bytes.Buffer
	Init("error", &buf)
	defer Init("info", nil)

	Debug("hidden on console", "item", "molecule_1")
	With("worker", 2).Info("tagged")

	out := buf.String()
	if !strings.Contains(out, "hidden on console") || !strings.Contains(out, "item=molecule_1") {
		t.Errorf("file log missing debug record: %q", out)
	}
	if !strings.Contains(out, "worker=2") {
		t.Errorf("file log missing With attrs: %q", out)
	}
}
