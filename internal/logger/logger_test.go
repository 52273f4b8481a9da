package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLevelRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, closer := New(Config{Level: "info", Stdout: &stdout, Stderr: &stderr})
	defer closer.Close()

	l.Debug("hidden")
	l.Info("bag created", "bagId", "B1")
	l.Warn("barcode retry")
	l.Error("image delete failed")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "bag created")
	assert.Contains(t, stdout.String(), "bagId=B1")
	assert.Contains(t, stdout.String(), "barcode retry")
	assert.NotContains(t, stdout.String(), "image delete failed")
	assert.Contains(t, stderr.String(), "image delete failed")
}

func TestJSONFormatKeepsAttrsAcrossRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l, closer := New(Config{Level: "debug", Format: "json", Stdout: &stdout, Stderr: &stderr})
	defer closer.Close()

	l.With("requestId", "r-1").WithGroup("req").Error("boom", "status", 500)

	assert.Empty(t, stdout.String())
	line := stderr.String()
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"requestId":"r-1"`)
	assert.Contains(t, line, `"req":{"status":500}`)
}

func TestFileReceivesAllLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omara.log")
	var stdout, stderr bytes.Buffer
	l, closer := New(Config{Level: "info", File: path, Stdout: &stdout, Stderr: &stderr})

	l.Info("first")
	l.Error("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
