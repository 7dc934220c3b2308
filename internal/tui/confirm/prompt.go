package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Prompt implements domain.DecisionSource interface.
var _ domain.DecisionSource = (*Prompt)(nil)

// TaskGetter looks up the task being reviewed.
type TaskGetter interface {
	Get(id string) (*domain.Task, error)
}

// Prompt asks the human at the terminal to accept or reject an applied edit.
// Concurrent Await calls are queued so that only one prompt owns the terminal.
type Prompt struct {
	tasks TaskGetter
	in    io.Reader
	out   io.Writer
	slot  chan struct{}
}

// NewPrompt creates a Prompt reading keys from in and drawing to out.
func NewPrompt(tasks TaskGetter, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		tasks: tasks,
		in:    in,
		out:   out,
		slot:  make(chan struct{}, 1),
	}
}

// Await shows the prompt for taskID and blocks until the human decides.
// The prompt is always answered live, so since is not consulted.
func (p *Prompt) Await(ctx context.Context, taskID string, _ time.Time) (domain.Decision, error) {
	select {
	case p.slot <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-p.slot }()

	task, err := p.tasks.Get(taskID)
	if err != nil {
		return "", fmt.Errorf("load task %s: %w", taskID, err)
	}

	prog := tea.NewProgram(NewModel(task),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return "", ctxErr
		}
		return "", fmt.Errorf("decision prompt: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.Decision() == "" {
		return "", fmt.Errorf("decision prompt for %s closed without a decision", taskID)
	}
	return m.Decision(), nil
}
