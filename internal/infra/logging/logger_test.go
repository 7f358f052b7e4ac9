package logging

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
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, slog.LevelError, LevelFromVerbosity(-1))
	assert.Equal(t, slog.LevelError, LevelFromVerbosity(0))
	assert.Equal(t, slog.LevelWarn, LevelFromVerbosity(1))
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(2))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(3))
	assert.Equal(t, LevelTrace, LevelFromVerbosity(4))
	assert.Equal(t, LevelTrace, LevelFromVerbosity(9))
}

func TestLogger_LogFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Info("usecase", `issue created: "#12"`)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	// Verify format: [timestamp] [INFO] [scope] [usecase] message
	line := lines[0]
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "["+logger.Scope()+"]")
	assert.Contains(t, line, "[usecase]")
	assert.Contains(t, line, `issue created: "#12"`)
	assert.Len(t, logger.Scope(), 8)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn) // Only warn and above

	logger.Trace("x", "trace message")
	logger.Debug("x", "debug message")
	logger.Info("x", "info message")
	logger.Warn("x", "warn message")
	logger.Error("x", "error message")

	content := buf.String()
	assert.NotContains(t, content, "trace message")
	assert.NotContains(t, content, "debug message")
	assert.NotContains(t, content, "info message")
	assert.Contains(t, content, "[WARN]")
	assert.Contains(t, content, "error message")
}

func TestLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelTrace)

	logger.Trace("gh", "raw response")

	assert.Contains(t, buf.String(), "[TRACE] ")
}

func TestLogger_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "ci-triage.log")
	logger := New(&buf, slog.LevelInfo)
	logger.SetColor(true)
	require.NoError(t, logger.OpenFile(path))

	logger.Error("cli", "boom")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	// The file never carries color codes.
	assert.Contains(t, string(content), "[ERROR] ["+logger.Scope()+"] [cli] boom")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestLogger_NilConsole(t *testing.T) {
	logger := New(nil, slog.LevelDebug)
	defer func() { _ = logger.Close() }()

	// Should not panic
	logger.Info("x", "test message")
	logger.Debug("x", "debug message")
	assert.NoError(t, logger.Close())
}
