package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sustainers/internal/config"
)

func readLogLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %q", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.FileExists(t, logFile)

	logger.Info("test message", "key", "value")
	logger.Debug("filtered out")
	require.NoError(t, CloseLogFile())

	entries := readLogLines(t, logFile)
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])

	t.Run("second call returns the same logger", func(t *testing.T) {
		again, err := InitializeLogger(config.LoggingConfig{Output: "console"})
		require.NoError(t, err)
		assert.Same(t, logger, again)
		assert.Same(t, logger, GetLogger())
	})
}

func TestInitializeLoggerBadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "x.log")})
	assert.Error(t, err)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.With("component", "test").InfoContext(ctx, "test with trace")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "info", Format: "text"})

	logger.Info("plain", "rows", 3)
	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "rows=3")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input).String(), input)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing id kept")
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Format: "json"})

	WithError(WithComponent(logger, "exporter"), assert.AnError).Info("failed")
	assert.Same(t, logger, WithError(logger, nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "exporter", entry["component"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}

func TestCLILoggingConfig(t *testing.T) {
	paths := &config.Paths{LogsDir: "/var/log/sustainers"}
	cfg := CLILoggingConfig(config.LoggingConfig{Output: "both", Level: "debug"}, paths)

	assert.Equal(t, "file", cfg.Output)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, filepath.Join("/var/log/sustainers", config.CLILogFileName), cfg.FilePath)
}
