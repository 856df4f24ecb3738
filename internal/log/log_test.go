package log

import (
	"bytes"
	"context"
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
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var text bytes.Buffer
	newLogger(&text, slog.LevelInfo, false).Info("pointer moved", "x", 10)
	if !strings.Contains(text.String(), "msg=\"pointer moved\"") {
		t.Errorf("Expected text output, got %q", text.String())
	}

	var js bytes.Buffer
	newLogger(&js, slog.LevelInfo, true).Info("pointer moved", "x", 10)
	if !strings.Contains(js.String(), `"msg":"pointer moved"`) {
		t.Errorf("Expected JSON output, got %q", js.String())
	}
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, slog.LevelWarn, false)
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("Expected warn message to be logged")
	}
}

func TestComponent(t *testing.T) {
	if Component("tracker") == nil {
		t.Fatal("Component returned nil")
	}
}

func TestInit_AdjustsLevel(t *testing.T) {
	defer Init("info")
	ctx := context.Background()

	Init("warn")
	if L().Enabled(ctx, slog.LevelInfo) {
		t.Error("Info should be disabled at warn level")
	}

	Init("debug")
	if !L().Enabled(ctx, slog.LevelDebug) {
		t.Error("A later Init should lower the level")
	}
}
