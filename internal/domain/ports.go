package domain

import (
	"context"
	"time"
)

// TaskRepository manages task record persistence.
// Each task lives in its own CHANGE-<id>.json document under Dir().
type TaskRepository interface {
	// Dir returns the tasks directory.
	Dir() string

	// Path returns the file path for a task ID.
	Path(id string) string

	// Load reads and validates the task document at path.
	// Returns *MalformedTaskError if the document is not a well-formed task.
	Load(path string) (*Task, error)

	// Get retrieves a task by ID, falling back to the archive.
	// Returns ErrTaskNotFound if neither location holds the task.
	Get(id string) (*Task, error)

	// List retrieves tasks matching the filter.
	List(filter TaskFilter) (*TaskList, error)

	// Create writes a new task and refuses to overwrite an existing one.
	Create(task *Task) error

	// Save rewrites the full task document atomically.
	Save(task *Task) error

	// Delete removes a task by ID.
	Delete(id string) error

	// Archive moves a terminal task into the archive directory.
	Archive(id string) error

	// IsArchived reports whether path points into the archive directory.
	IsArchived(path string) bool
}

// TaskFilter specifies criteria for listing tasks.
type TaskFilter struct {
	Statuses        []Status // Empty = all statuses
	IncludeArchived bool     // Also list archived records
}

// Matches reports whether the task satisfies the filter's status criteria.
func (f TaskFilter) Matches(t *Task) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if t.Status == s {
			return true
		}
	}
	return false
}

// TaskList is the result of listing tasks.
// Malformed files are reported here rather than failing the whole listing.
type TaskList struct {
	Tasks     []*Task
	Malformed []*MalformedTaskError
}

// TaskEvent announces a task file that became actionable.
type TaskEvent struct {
	Path   string
	TaskID string
}

// VersionControl operates on the workspace's working tree.
type VersionControl interface {
	// Root returns the absolute path of the working tree.
	Root() string

	// DiffLineCount returns inserted plus deleted lines against HEAD.
	DiffLineCount(ctx context.Context) (int, error)

	// ChangedFiles returns the slash-separated paths the working tree reports as changed.
	ChangedFiles(ctx context.Context) ([]string, error)

	// Stage adds exactly the given paths to the index.
	Stage(ctx context.Context, paths []string) error

	// Commit records the index and returns the new commit id.
	Commit(ctx context.Context, message string) (string, error)

	// Push pushes branch to remote. Empty values resolve to defaults.
	Push(ctx context.Context, remote, branch string) error

	// Revert discards working tree changes to the given paths.
	Revert(ctx context.Context, paths []string) error

	// IsClean reports whether the working tree has no changes.
	IsClean(ctx context.Context) (bool, error)

	// CurrentBranch returns the name of the checked out branch.
	CurrentBranch() (string, error)
}

// EditRequest is the structured change request handed to an edit proposer.
type EditRequest struct {
	TaskID      string
	Type        TaskType
	Description string
	Scope       []string
	Rules       []string
}

// NewEditRequest builds an edit request from a task.
func NewEditRequest(t *Task) EditRequest {
	return EditRequest{
		TaskID:      t.ID,
		Type:        t.Type,
		Description: t.Description,
		Scope:       t.Scope,
		Rules:       t.Rules,
	}
}

// ProposalAck acknowledges a submitted edit request.
type ProposalAck struct {
	Channel string // Name of the proposer that accepted the request
}

// Editor opens files for the human and submits edit requests.
type Editor interface {
	// OpenFiles opens the given absolute paths and returns those actually opened.
	OpenFiles(ctx context.Context, paths []string) ([]string, error)

	// ProposeEdit submits the request through the first available proposer.
	ProposeEdit(ctx context.Context, req EditRequest) (ProposalAck, error)
}

// EditProposer is one channel for handing an edit request to the external editor agent.
type EditProposer interface {
	// Name identifies the channel in logs and acknowledgements.
	Name() string

	// Propose submits the prompt. Returns ErrProposerUnavailable if the channel
	// cannot be used, which selects the next proposer rather than failing the task.
	Propose(ctx context.Context, prompt string) error
}

// DecisionSource delivers the human accept/reject signal for a task.
type DecisionSource interface {
	// Await blocks until a decision for taskID arrives or ctx is canceled.
	// Decisions recorded before since belong to an earlier pass.
	Await(ctx context.Context, taskID string, since time.Time) (Decision, error)
}

// DecisionSink records a human decision for a waiting processor.
type DecisionSink interface {
	Send(ctx context.Context, taskID string, d Decision) error
}

// Notifier reports a task's final outcome to an external listener.
type Notifier interface {
	Notify(ctx context.Context, taskID string, status Status, details string) error
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (repo + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// Logger writes categorized log lines to the global and per-task logs.
// An empty taskID logs to the global log only.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// NopLogger discards every log line.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// CommitGate serializes commit sequences against the shared working tree.
type CommitGate interface {
	// Acquire waits for the gate and returns the function that releases it.
	Acquire(ctx context.Context) (release func(), err error)

	// TryAcquire takes the gate without waiting.
	// Returns ErrCommitInFlight if another commit sequence holds it.
	TryAcquire() (release func(), err error)
}

// DispatchTracker records statuses written by the processor so the watcher
// recognizes the next transition into pending even if it never saw the file change.
type DispatchTracker interface {
	Settle(path string, status Status)
}
