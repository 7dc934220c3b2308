package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Statuses        []domain.Status // Empty = all statuses
	IncludeArchived bool            // Also list archived records
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks     []*domain.Task
	Malformed []*domain.MalformedTaskError // Files that could not be read as tasks
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks domain.TaskRepository
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository) *ListTasks {
	return &ListTasks{
		tasks: tasks,
	}
}

// Execute returns the tasks matching the input filter.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	for _, s := range in.Statuses {
		if !s.IsValid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
	}

	list, err := uc.tasks.List(domain.TaskFilter{
		Statuses:        in.Statuses,
		IncludeArchived: in.IncludeArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &ListTasksOutput{
		Tasks:     list.Tasks,
		Malformed: list.Malformed,
	}, nil
}
