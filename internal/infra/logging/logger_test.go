package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_Info(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info("a1b2c3d4", "processor", "test message")

	// Verify global log
	content, err := os.ReadFile(domain.GlobalLogPath(stateDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[INFO]")
	assert.Contains(t, string(content), "[task-a1b2c3d4]")
	assert.Contains(t, string(content), "[processor]")
	assert.Contains(t, string(content), "test message")

	// Verify task log
	taskContent, err := os.ReadFile(domain.TaskLogPath(stateDir, "a1b2c3d4"))
	require.NoError(t, err)
	assert.Equal(t, string(content), string(taskContent))
}

func TestLogger_GlobalLogOnly(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info("", "watcher", "global message")

	content, err := os.ReadFile(domain.GlobalLogPath(stateDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[global]")
	assert.Contains(t, string(content), "global message")

	entries, err := os.ReadDir(filepath.Join(stateDir, "logs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLogger_LevelFiltering(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelWarn) // Only warn and above
	defer func() { _ = logger.Close() }()

	logger.Debug("x", "commit", "debug message")
	logger.Info("x", "commit", "info message")
	logger.Warn("x", "commit", "warn message")
	logger.Error("x", "commit", "error message")

	content, err := os.ReadFile(domain.GlobalLogPath(stateDir))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug message")
	assert.NotContains(t, string(content), "info message")
	assert.Contains(t, string(content), "[WARN]")
	assert.Contains(t, string(content), "error message")
}

func TestLogger_DisabledWhenEmptyStateDir(t *testing.T) {
	logger := New("", slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	// Should not panic or create files.
	logger.Info("x", "processor", "test message")
	logger.Error("x", "processor", "error message")
}

func TestLogger_Echo(t *testing.T) {
	var buf bytes.Buffer
	logger := New("", slog.LevelInfo)
	logger.SetEcho(&buf)

	logger.Debug("x", "processor", "hidden")
	logger.Info("x", "processor", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[task-x] [processor] shown")
}

func TestLogger_MultipleTaskFiles(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	logger.Info("one", "processor", "message for task one")
	logger.Info("two", "processor", "message for task two")

	one, err := os.ReadFile(domain.TaskLogPath(stateDir, "one"))
	require.NoError(t, err)
	assert.Contains(t, string(one), "message for task one")
	assert.NotContains(t, string(one), "message for task two")

	global, err := os.ReadFile(domain.GlobalLogPath(stateDir))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(global), "\n"))
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelInfo)
	defer func() { _ = logger.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("t", "processor", "line")
		}()
	}
	wg.Wait()

	content, err := os.ReadFile(domain.GlobalLogPath(stateDir))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, "[task-t] [processor] line"), line)
	}
}

func TestLogger_Close(t *testing.T) {
	stateDir := t.TempDir()
	logger := New(stateDir, slog.LevelInfo)
	logger.Info("x", "processor", "test message")

	assert.NoError(t, logger.Close())
	assert.FileExists(t, domain.GlobalLogPath(stateDir))
	assert.FileExists(t, domain.TaskLogPath(stateDir, "x"))

	// Writing after close reopens the files.
	logger.Info("x", "processor", "after close")
	assert.NoError(t, logger.Close())
}
