package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// DecideTaskInput contains the human decision for a waiting task.
type DecideTaskInput struct {
	TaskID   string
	Decision domain.Decision
}

// DecideTask delivers an accept/reject decision to the processor waiting on a task.
type DecideTask struct {
	tasks  domain.TaskRepository
	sink   domain.DecisionSink
	logger domain.Logger
}

// NewDecideTask creates a new DecideTask use case.
func NewDecideTask(tasks domain.TaskRepository, sink domain.DecisionSink, logger domain.Logger) *DecideTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &DecideTask{
		tasks:  tasks,
		sink:   sink,
		logger: logger,
	}
}

// Execute sends the decision. Only a processing task has a processor waiting for it.
func (uc *DecideTask) Execute(ctx context.Context, in DecideTaskInput) error {
	if !in.Decision.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDecision, in.Decision)
	}

	task, err := shared.GetLiveTask(uc.tasks, in.TaskID)
	if err != nil {
		return err
	}
	if task.Status != domain.StatusProcessing {
		return fmt.Errorf("task %s is %s: %w", task.ID, task.Status, domain.ErrNotAwaitingDecision)
	}

	if err := uc.sink.Send(ctx, task.ID, in.Decision); err != nil {
		return fmt.Errorf("send decision: %w", err)
	}
	uc.logger.Info(task.ID, "decision", string(in.Decision))
	return nil
}
