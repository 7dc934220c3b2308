// Package logging provides file-based logging for git-relay.
// It outputs logs to both a global log file (.relay/logs/relay.log)
// and task-specific log files (.relay/logs/task-<id>.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes formatted lines to the relay log directory.
// Fields are ordered to minimize memory padding.
type Logger struct {
	globalFile *os.File
	echo       io.Writer
	taskFiles  map[string]*os.File
	stateDir   string
	mu         sync.Mutex
	level      slog.Level
}

// New creates a new Logger that writes under stateDir/logs.
// If stateDir is empty, file logging is disabled.
func New(stateDir string, level slog.Level) *Logger {
	return &Logger{
		stateDir:  stateDir,
		level:     level,
		taskFiles: make(map[string]*os.File),
	}
}

// SetEcho mirrors every written line to w, e.g. the terminal running `relay watch`.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLocked opens path for appending. Caller must hold l.mu.
func (l *Logger) openLocked(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	if l.globalFile != nil {
		if err := l.globalFile.Close(); err != nil {
			lastErr = err
		}
		l.globalFile = nil
	}
	for id, f := range l.taskFiles {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.taskFiles, id)
	}
	return lastErr
}

// formatLog formats a log entry in the specified format.
// Format: [2025-12-30 09:32:51] [INFO] [task-a1b2c3d4] [category] message
func formatLog(t time.Time, level slog.Level, taskID, category, msg string) string {
	taskStr := "global"
	if taskID != "" {
		taskStr = "task-" + taskID
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		taskStr,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// log writes a log entry to appropriate files based on taskID.
// An empty taskID logs only to the global log.
func (l *Logger) log(level slog.Level, taskID, category, msg string) {
	if level < l.level {
		return
	}

	entry := formatLog(time.Now(), level, taskID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.echo != nil {
		_, _ = io.WriteString(l.echo, entry)
	}
	if l.stateDir == "" {
		return
	}

	if l.globalFile == nil {
		f, err := l.openLocked(domain.GlobalLogPath(l.stateDir))
		if err != nil {
			return
		}
		l.globalFile = f
	}
	_, _ = io.WriteString(l.globalFile, entry)

	if taskID == "" {
		return
	}
	tf, ok := l.taskFiles[taskID]
	if !ok {
		f, err := l.openLocked(domain.TaskLogPath(l.stateDir, taskID))
		if err != nil {
			return
		}
		tf = f
		l.taskFiles[taskID] = f
	}
	_, _ = io.WriteString(tf, entry)
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) {
	l.log(slog.LevelInfo, taskID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) {
	l.log(slog.LevelDebug, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID, category, msg string) {
	l.log(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID, category, msg string) {
	l.log(slog.LevelError, taskID, category, msg)
}
