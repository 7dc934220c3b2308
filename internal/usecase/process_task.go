package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/policy"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

const processorLogCategory = "processor"

// Result details written for each terminal outcome.
const (
	DetailsCommitted    = "Changes committed and pushed"
	DetailsManualReview = "Requires manual commit"
)

// ProcessTaskInput identifies the task to process.
// Path takes precedence; otherwise TaskID is resolved in the tasks directory.
type ProcessTaskInput struct {
	Path   string
	TaskID string
}

// ProcessTaskOutput contains the task after its pass reached a terminal status.
type ProcessTaskOutput struct {
	Task     *domain.Task
	CommitID string // Empty unless a commit was created
}

// CommitData is the result data recorded when a commit was created.
type CommitData struct {
	Commit string `json:"commit"`
}

// ProcessTask drives one pending task through a full pass:
// edit request, human decision, eligibility and commit.
// Fields are ordered to minimize memory padding.
type ProcessTask struct {
	tasks     domain.TaskRepository
	vcs       domain.VersionControl
	editor    domain.Editor
	decisions domain.DecisionSource
	notifier  domain.Notifier
	tracker   domain.DispatchTracker
	clock     domain.Clock
	logger    domain.Logger
	policy    *policy.SafetyPolicy
	commits   *shared.CommitSequence
}

// NewProcessTask creates a new ProcessTask use case.
// vcs may be nil when no workspace is available; tracker may be nil outside `relay watch`.
func NewProcessTask(
	tasks domain.TaskRepository,
	vcs domain.VersionControl,
	editor domain.Editor,
	decisions domain.DecisionSource,
	notifier domain.Notifier,
	safety *policy.SafetyPolicy,
	commits *shared.CommitSequence,
	tracker domain.DispatchTracker,
	clock domain.Clock,
	logger domain.Logger,
) *ProcessTask {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ProcessTask{
		tasks:     tasks,
		vcs:       vcs,
		editor:    editor,
		decisions: decisions,
		notifier:  notifier,
		tracker:   tracker,
		clock:     clock,
		logger:    logger,
		policy:    safety,
		commits:   commits,
	}
}

// outcome is the terminal result of one pass.
type outcome struct {
	err      error
	status   domain.Status
	details  string
	commitID string
}

// Execute processes the task. Only pending records are accepted.
// Once the task is persisted as processing, every failure is recorded as a
// terminal status on the task instead of being returned.
func (uc *ProcessTask) Execute(ctx context.Context, in ProcessTaskInput) (*ProcessTaskOutput, error) {
	path := in.Path
	if path == "" {
		if in.TaskID == "" {
			return nil, domain.ErrTaskNotFound
		}
		path = uc.tasks.Path(in.TaskID)
	}
	if uc.tasks.IsArchived(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), domain.ErrArchivedReadOnly)
	}

	task, err := uc.tasks.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), domain.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("load task: %w", err)
	}

	// 1. Claim the task.
	if err := task.Start(uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	uc.settle(path, task.Status)
	uc.logger.Info(task.ID, processorLogCategory, fmt.Sprintf("processing %s: %s", task.Type, firstLine(task.Description)))

	out := uc.run(ctx, task)

	var data json.RawMessage
	if out.commitID != "" {
		data, _ = json.Marshal(CommitData{Commit: out.commitID})
	}
	if err := task.Finish(out.status, out.details, data, uc.clock.Now()); err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	if err := uc.tasks.Save(task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	uc.settle(path, task.Status)

	if out.err != nil {
		uc.logger.Error(task.ID, processorLogCategory, fmt.Sprintf("%s: %s", task.Status, out.details))
	} else {
		uc.logger.Info(task.ID, processorLogCategory, fmt.Sprintf("%s: %s", task.Status, out.details))
	}

	// 8. Notify; failures never change the outcome.
	if err := uc.notifier.Notify(context.WithoutCancel(ctx), task.ID, task.Status, out.details); err != nil {
		uc.logger.Warn(task.ID, "notify", err.Error())
	}

	return &ProcessTaskOutput{Task: task, CommitID: out.commitID}, nil
}

// run performs steps 2 to 7 and maps every result onto a terminal status.
func (uc *ProcessTask) run(ctx context.Context, task *domain.Task) outcome {
	fail := func(err error) outcome {
		return outcome{status: domain.StatusFailed, details: err.Error(), err: err}
	}

	// 2. Resolve the scope in the workspace.
	resolved, err := uc.resolveScope(task)
	if err != nil {
		return fail(err)
	}

	// 3. Open the files and hand the request to the edit proposer.
	if _, err := uc.editor.OpenFiles(ctx, resolved); err != nil {
		uc.logger.Warn(task.ID, processorLogCategory, "open files: "+err.Error())
	}
	ack, err := uc.editor.ProposeEdit(ctx, domain.NewEditRequest(task))
	if err != nil {
		return fail(err)
	}
	uc.logger.Info(task.ID, processorLogCategory, "edit request sent via "+ack.Channel+", awaiting decision")

	// 4. Wait for the human. Anything decided since this pass began counts.
	decision, err := uc.decisions.Await(ctx, task.ID, *task.UpdatedAt)
	if err != nil {
		return fail(fmt.Errorf("await decision: %w", err))
	}
	if decision == domain.DecisionRejected {
		return outcome{status: domain.StatusRejected, details: domain.ErrUserRejected.Error()}
	}
	if decision != domain.DecisionAccepted {
		return fail(fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision))
	}

	// 5. Static eligibility, before touching version control.
	if d := uc.policy.StaticEligible(task); !d.Eligible {
		uc.logger.Info(task.ID, processorLogCategory, "not eligible for auto-commit: "+d.String())
		return outcome{status: domain.StatusManualReview, details: DetailsManualReview}
	}

	// 6-7. Commit sequence.
	commitID, err := uc.commits.Run(ctx, task)
	if err != nil {
		out := fail(err)
		out.commitID = commitID
		return out
	}
	return outcome{status: domain.StatusSuccess, details: DetailsCommitted, commitID: commitID}
}

// resolveScope returns the absolute paths of scope entries that exist as files.
func (uc *ProcessTask) resolveScope(task *domain.Task) ([]string, error) {
	if uc.vcs == nil || uc.vcs.Root() == "" {
		return nil, domain.ErrNoWorkspace
	}
	root := uc.vcs.Root()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoWorkspace, root)
	}

	var resolved []string
	for _, p := range task.Scope {
		abs := filepath.Join(root, filepath.FromSlash(domain.NormalizePath(p)))
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			uc.logger.Warn(task.ID, processorLogCategory, "scope path not found: "+p)
			continue
		}
		resolved = append(resolved, abs)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoTargetFiles, strings.Join(task.Scope, ", "))
	}
	return resolved, nil
}

func (uc *ProcessTask) settle(path string, status domain.Status) {
	if uc.tracker != nil {
		uc.tracker.Settle(path, status)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
