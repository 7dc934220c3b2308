package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-relay/internal/domain"
)

// ArchiveTaskInput contains the parameters for archiving tasks.
type ArchiveTaskInput struct {
	TaskID string // Task to archive (ignored when All is set)
	All    bool   // Archive every terminal task
}

// ArchiveTaskOutput contains the result of archiving tasks.
type ArchiveTaskOutput struct {
	Archived []string // IDs moved to the archive
}

// ArchiveTask moves terminal tasks into the read-only archive.
type ArchiveTask struct {
	tasks  domain.TaskRepository
	logger domain.Logger
}

// NewArchiveTask creates a new ArchiveTask use case.
func NewArchiveTask(tasks domain.TaskRepository, logger domain.Logger) *ArchiveTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ArchiveTask{
		tasks:  tasks,
		logger: logger,
	}
}

// Execute archives one task, or all terminal tasks.
func (uc *ArchiveTask) Execute(_ context.Context, in ArchiveTaskInput) (*ArchiveTaskOutput, error) {
	ids := []string{in.TaskID}
	if in.All {
		list, err := uc.tasks.List(domain.TaskFilter{Statuses: terminalStatuses()})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		ids = ids[:0]
		for _, t := range list.Tasks {
			ids = append(ids, t.ID)
		}
	}

	out := &ArchiveTaskOutput{}
	for _, id := range ids {
		if err := uc.tasks.Archive(id); err != nil {
			return out, fmt.Errorf("archive task %s: %w", id, err)
		}
		uc.logger.Info(id, "task", "archived")
		out.Archived = append(out.Archived, id)
	}
	return out, nil
}

func terminalStatuses() []domain.Status {
	var statuses []domain.Status
	for _, s := range domain.AllStatuses() {
		if s.IsTerminal() {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
