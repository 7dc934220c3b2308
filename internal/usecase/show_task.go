package usecase

import (
	"context"
	"errors"
	"os"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID string // Task ID (required)
}

// ShowTaskOutput contains the result of showing a task.
type ShowTaskOutput struct {
	Task     *domain.Task // The task details
	Path     string       // Live file path
	Archived bool         // True if only the archived copy exists
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	tasks domain.TaskRepository
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(tasks domain.TaskRepository) *ShowTask {
	return &ShowTask{
		tasks: tasks,
	}
}

// Execute retrieves and returns the task details, falling back to the archive.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	path := uc.tasks.Path(in.TaskID)
	_, loadErr := uc.tasks.Load(path)

	return &ShowTaskOutput{
		Task:     task,
		Path:     path,
		Archived: errors.Is(loadErr, os.ErrNotExist),
	}, nil
}
