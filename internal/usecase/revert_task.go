package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// RevertTaskInput contains the parameters for reverting a task's files.
type RevertTaskInput struct {
	TaskID string
}

// RevertTaskOutput lists the reverted paths.
type RevertTaskOutput struct {
	Paths []string
}

// RevertTask discards working tree changes to a task's scope on request.
// The processor never invokes it on its own.
type RevertTask struct {
	tasks  domain.TaskRepository
	vcs    domain.VersionControl
	gate   domain.CommitGate
	logger domain.Logger
}

// NewRevertTask creates a new RevertTask use case.
func NewRevertTask(tasks domain.TaskRepository, vcs domain.VersionControl, gate domain.CommitGate, logger domain.Logger) *RevertTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &RevertTask{
		tasks:  tasks,
		vcs:    vcs,
		gate:   gate,
		logger: logger,
	}
}

// Execute reverts the scope files. It refuses to run while a commit sequence is in flight.
func (uc *RevertTask) Execute(ctx context.Context, in RevertTaskInput) (*RevertTaskOutput, error) {
	task, err := shared.GetTask(uc.tasks, in.TaskID)
	if err != nil {
		return nil, err
	}
	if uc.vcs == nil {
		return nil, domain.ErrNoWorkspace
	}

	release, err := uc.gate.TryAcquire()
	if err != nil {
		return nil, err
	}
	defer release()

	paths := make([]string, 0, len(task.Scope))
	for _, p := range task.Scope {
		paths = append(paths, domain.NormalizePath(p))
	}
	if err := uc.vcs.Revert(ctx, paths); err != nil {
		return nil, fmt.Errorf("revert: %w", err)
	}
	uc.logger.Info(task.ID, "commit", fmt.Sprintf("reverted %d file(s)", len(paths)))

	return &RevertTaskOutput{Paths: paths}, nil
}
