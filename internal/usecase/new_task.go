// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/runoshun/git-relay/internal/domain"
)

// NewTaskInput contains the parameters for creating a new task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	Source      *domain.Source  // Origin metadata (optional)
	AutoCommit  *bool           // nil = whether the type is auto-commit safe
	Type        domain.TaskType // Kind of change (required)
	Description string          // Requested change (required)
	Scope       []string        // Files the edit may touch (required)
	Rules       []string        // Extra rules appended to the type's defaults
}

// NewTaskOutput contains the result of creating a new task.
type NewTaskOutput struct {
	Task *domain.Task
	Path string // File the task was written to
}

// NewTask is the use case for creating a new pending task.
type NewTask struct {
	tasks  domain.TaskRepository
	clock  domain.Clock
	logger domain.Logger
	newID  func() string
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, clock domain.Clock, logger domain.Logger) *NewTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &NewTask{
		tasks:  tasks,
		clock:  clock,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Execute creates a new task with the given input.
func (uc *NewTask) Execute(_ context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	autoCommit := in.Type.AutoCommitSafe()
	if in.AutoCommit != nil {
		autoCommit = *in.AutoCommit
	}

	rules := in.Type.DefaultRules()
	rules = append(rules, in.Rules...)

	scope := make([]string, 0, len(in.Scope))
	for _, p := range in.Scope {
		scope = append(scope, domain.NormalizePath(p))
	}

	task := &domain.Task{
		ID:          domain.ShortID(uc.newID()),
		Type:        in.Type,
		Description: in.Description,
		Scope:       scope,
		Rules:       rules,
		Status:      domain.StatusPending,
		AutoCommit:  autoCommit,
		CreatedAt:   uc.clock.Now().UTC(),
		Source:      in.Source,
	}
	if task.Description == "" {
		return nil, fmt.Errorf("%w: description is empty", domain.ErrInvalidTask)
	}
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidTask, err)
	}

	if err := uc.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	uc.logger.Info(task.ID, "task", fmt.Sprintf("created %s: %q", task.Type, task.Description))

	return &NewTaskOutput{Task: task, Path: uc.tasks.Path(task.ID)}, nil
}
