package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	TaskID string // Task ID to delete
	Force  bool   // Delete even while the task is processing
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task *domain.Task // The deleted task
}

// DeleteTask is the use case for deleting a task file.
type DeleteTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(tasks domain.TaskRepository, logger domain.Logger) *DeleteTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &DeleteTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute deletes a live task with the given ID.
// A processing task belongs to a running processor and is kept unless forced.
func (uc *DeleteTask) Execute(_ context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	task, err := shared.GetLiveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status == domain.StatusProcessing && !in.Force {
		return nil, fmt.Errorf("cannot delete task in %s status: %w", task.Status, domain.ErrInvalidTransition)
	}

	if err := uc.tasks.Delete(in.TaskID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	uc.logger.Info(task.ID, "task", "deleted")

	return &DeleteTaskOutput{Task: task}, nil
}
