package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLogLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := logLevelFromString(tt.input); got != tt.expected {
			t.Errorf("logLevelFromString(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLoadBuildInfoAsSlogAttrs(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "build-info.yaml")
	if err := os.WriteFile(filename, []byte("version: v1.2.0\ncommit: abc123\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	attrs := loadBuildInfoAsSlogAttrs(filename, buildInfoPrefix)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(attrs))
	}
	if attrs[0].Key != "build.commit" || attrs[0].Value.String() != "abc123" {
		t.Errorf("unexpected first attr: %v", attrs[0])
	}
	if attrs[1].Key != "build.version" || attrs[1].Value.String() != "v1.2.0" {
		t.Errorf("unexpected second attr: %v", attrs[1])
	}

	if attrs := loadBuildInfoAsSlogAttrs(filepath.Join(t.TempDir(), "missing.yaml"), buildInfoPrefix); attrs != nil {
		t.Errorf("expected no attrs for missing file, got %v", attrs)
	}
}
