package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// RequeueTaskInput contains the parameters for re-queueing a task.
type RequeueTaskInput struct {
	TaskID string
}

// RequeueTaskOutput contains the re-queued task.
type RequeueTaskOutput struct {
	Task           *domain.Task
	PreviousStatus domain.Status
}

// RequeueTask resets a terminal task to pending so the watcher dispatches it again.
type RequeueTask struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewRequeueTask creates a new RequeueTask use case.
func NewRequeueTask(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *RequeueTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &RequeueTask{
		tasks:  tasks,
		clock:  clock,
		logger: logger,
	}
}

// Execute moves the task back to pending and clears its result.
func (uc *RequeueTask) Execute(_ context.Context, in RequeueTaskInput) (*RequeueTaskOutput, error) {
	task, err := shared.GetLiveTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}

	prev := task.Status
	if err := task.Requeue(uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	uc.logger.Info(task.ID, "task", fmt.Sprintf("re-queued from %s", prev))

	return &RequeueTaskOutput{Task: task, PreviousStatus: prev}, nil
}
