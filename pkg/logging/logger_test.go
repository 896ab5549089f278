package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tc := range cases {
		l := New(tc.level)
		if !l.Enabled(context.Background(), tc.enabled) {
			t.Errorf("New(%q): level %v should be enabled", tc.level, tc.enabled)
		}
		if l.Enabled(context.Background(), tc.muted) {
			t.Errorf("New(%q): level %v should be muted", tc.level, tc.muted)
		}
	}
}

func TestDefault(t *testing.T) {
	l := Default()
	if l == nil || l.Logger == nil {
		t.Fatal("Default returned nil logger")
	}
}

func TestWith(t *testing.T) {
	l := Default().With("component", "proxy")
	if l == nil || l.Logger == nil {
		t.Fatal("With returned nil logger")
	}
}
