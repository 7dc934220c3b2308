package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Task file naming: CHANGE-<id>.json
const (
	TaskFilePrefix = "CHANGE-"
	TaskFileExt    = ".json"
)

// TaskFileName returns the file name for a task ID.
func TaskFileName(id string) string {
	return TaskFilePrefix + id + TaskFileExt
}

// taskFilePattern matches task file names: CHANGE-<id>.json
var taskFilePattern = regexp.MustCompile(`^CHANGE-([^/\\]+)\.json$`)

// ParseTaskFileName extracts the task ID from a file name.
// Returns the ID and true if the name follows the task naming convention.
func ParseTaskFileName(name string) (string, bool) {
	matches := taskFilePattern.FindStringSubmatch(filepath.Base(name))
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// IsTaskFile reports whether name matches the task file naming convention.
func IsTaskFile(name string) bool {
	_, ok := ParseTaskFileName(name)
	return ok
}

// ArchiveDir returns the archive directory inside a tasks directory.
func ArchiveDir(tasksDir string) string {
	return filepath.Join(tasksDir, ArchiveDirName)
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(stateDir, taskID string) string {
	return filepath.Join(stateDir, "logs", fmt.Sprintf("task-%s.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(stateDir string) string {
	return filepath.Join(stateDir, "logs", "relay.log")
}

// DecisionDir returns the decision inbox directory for a task.
// Format: <stateDir>/decisions/<task-id>
func DecisionDir(stateDir, taskID string) string {
	return filepath.Join(stateDir, DecisionDirName, taskID)
}

// ShortID derives a task ID from a UUID string: its first 8 hex characters.
func ShortID(uuid string) string {
	id := strings.ReplaceAll(uuid, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
