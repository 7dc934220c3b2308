package shared

import (
	"errors"
	"fmt"
	"os"

	"github.com/runoshun/git-relay/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.Get(taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := repo.Get(taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetLiveTask loads a task from the tasks directory.
// A task found only in the archive is history and yields domain.ErrArchivedReadOnly.
func GetLiveTask(repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := repo.Load(repo.Path(taskID))
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if _, err := GetTask(repo, taskID); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("task %s: %w", taskID, domain.ErrArchivedReadOnly)
}
