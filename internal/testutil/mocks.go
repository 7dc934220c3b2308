// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/runoshun/git-relay/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTaskRepository is an in-memory test double for domain.TaskRepository.
// Stored tasks are copied on the way in and out so callers cannot alias them.
// Fields are ordered to minimize memory padding.
type MockTaskRepository struct {
	Tasks     map[string]*domain.Task
	Archived  map[string]*domain.Task
	SaveErr   error
	GetErr    error
	CreateErr error
	DeleteErr error
	ListErr   error
	TasksDir  string
	Saved     []domain.Status // Status of every successful Save, in order
	mu        sync.Mutex
}

// Ensure MockTaskRepository implements domain.TaskRepository interface.
var _ domain.TaskRepository = (*MockTaskRepository)(nil)

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		Tasks:    make(map[string]*domain.Task),
		Archived: make(map[string]*domain.Task),
		TasksDir: "tasks",
	}
}

// Add stores a task directly, bypassing error injection.
func (m *MockTaskRepository) Add(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = cloneTask(task)
}

// Dir returns the configured tasks directory.
func (m *MockTaskRepository) Dir() string {
	return m.TasksDir
}

// Path returns the file path for a task ID.
func (m *MockTaskRepository) Path(id string) string {
	return filepath.Join(m.TasksDir, domain.TaskFileName(id))
}

// IsArchived reports whether path lies in the archive directory.
func (m *MockTaskRepository) IsArchived(path string) bool {
	return filepath.Dir(path) == domain.ArchiveDir(m.TasksDir)
}

// Load returns the live task stored for the file name in path.
func (m *MockTaskRepository) Load(path string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	id, ok := domain.ParseTaskFileName(path)
	if !ok {
		return nil, &domain.MalformedTaskError{Path: path, Reason: "not a task file"}
	}
	src := m.Tasks
	if m.IsArchived(path) {
		src = m.Archived
	}
	task, ok := src[id]
	if !ok {
		return nil, fmt.Errorf("read task file: %w", os.ErrNotExist)
	}
	return cloneTask(task), nil
}

// Get retrieves a task by ID, falling back to the archive.
func (m *MockTaskRepository) Get(id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if task, ok := m.Tasks[id]; ok {
		return cloneTask(task), nil
	}
	if task, ok := m.Archived[id]; ok {
		return cloneTask(task), nil
	}
	return nil, fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
}

// List returns live (and optionally archived) tasks matching the filter, by ID.
func (m *MockTaskRepository) List(filter domain.TaskFilter) (*domain.TaskList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := &domain.TaskList{}
	collect := func(src map[string]*domain.Task) {
		for _, t := range src {
			if filter.Matches(t) {
				result.Tasks = append(result.Tasks, cloneTask(t))
			}
		}
	}
	collect(m.Tasks)
	if filter.IncludeArchived {
		collect(m.Archived)
	}
	sort.Slice(result.Tasks, func(i, j int) bool { return result.Tasks[i].ID < result.Tasks[j].ID })
	return result, nil
}

// Create stores a new task, refusing to overwrite.
func (m *MockTaskRepository) Create(task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.Tasks[task.ID]; ok {
		return fmt.Errorf("%s: %w", task.ID, domain.ErrTaskExists)
	}
	m.Tasks[task.ID] = cloneTask(task)
	return nil
}

// Save stores the task and records its status.
func (m *MockTaskRepository) Save(task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tasks[task.ID] = cloneTask(task)
	m.Saved = append(m.Saved, task.Status)
	return nil
}

// Delete removes a live task.
func (m *MockTaskRepository) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Tasks[id]; !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	delete(m.Tasks, id)
	return nil
}

// Archive moves a terminal task to the archive map.
func (m *MockTaskRepository) Archive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.Tasks[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, domain.ErrTaskNotFound)
	}
	if !task.Status.IsTerminal() {
		return fmt.Errorf("cannot archive task in %s status: %w", task.Status, domain.ErrInvalidTransition)
	}
	delete(m.Tasks, id)
	m.Archived[id] = task
	return nil
}

// Snapshot returns a copy of the stored live task, or nil.
func (m *MockTaskRepository) Snapshot(id string) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Tasks[id]; ok {
		return cloneTask(t)
	}
	return nil
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	c.Scope = append([]string(nil), t.Scope...)
	c.Rules = append([]string(nil), t.Rules...)
	if t.Result != nil {
		r := *t.Result
		c.Result = &r
	}
	return &c
}

// MockVersionControl is a test double for domain.VersionControl.
// Calls records every method invoked, by name, in order.
// Fields are ordered to minimize memory padding.
type MockVersionControl struct {
	DiffErr       error
	ChangedErr    error
	StageErr      error
	CommitErr     error
	PushErr       error
	RevertErr     error
	RootDir       string
	CommitID      string
	Branch        string
	CommitMessage string
	PushRemote    string
	PushBranch    string
	Changed       []string
	Staged        []string
	Reverted      []string
	Calls         []string
	DiffLines     int
	mu            sync.Mutex
}

// Ensure MockVersionControl implements domain.VersionControl interface.
var _ domain.VersionControl = (*MockVersionControl)(nil)

func (m *MockVersionControl) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallNames returns a copy of the recorded calls.
func (m *MockVersionControl) CallNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// Root returns the configured working tree root.
func (m *MockVersionControl) Root() string {
	return m.RootDir
}

// DiffLineCount returns the configured line count.
func (m *MockVersionControl) DiffLineCount(_ context.Context) (int, error) {
	m.record("diff")
	return m.DiffLines, m.DiffErr
}

// ChangedFiles returns the configured changed files.
func (m *MockVersionControl) ChangedFiles(_ context.Context) ([]string, error) {
	m.record("changed")
	if m.ChangedErr != nil {
		return nil, m.ChangedErr
	}
	return append([]string(nil), m.Changed...), nil
}

// Stage records the staged paths.
func (m *MockVersionControl) Stage(_ context.Context, paths []string) error {
	m.record("stage")
	if m.StageErr != nil {
		return m.StageErr
	}
	m.Staged = append([]string(nil), paths...)
	return nil
}

// Commit records the message and returns the configured commit ID.
func (m *MockVersionControl) Commit(_ context.Context, message string) (string, error) {
	m.record("commit")
	if m.CommitErr != nil {
		return "", m.CommitErr
	}
	m.CommitMessage = message
	return m.CommitID, nil
}

// Push records the target.
func (m *MockVersionControl) Push(_ context.Context, remote, branch string) error {
	m.record("push")
	if m.PushErr != nil {
		return m.PushErr
	}
	m.PushRemote = remote
	m.PushBranch = branch
	return nil
}

// Revert records the reverted paths.
func (m *MockVersionControl) Revert(_ context.Context, paths []string) error {
	m.record("revert")
	if m.RevertErr != nil {
		return m.RevertErr
	}
	m.Reverted = append([]string(nil), paths...)
	return nil
}

// IsClean reports whether no files are configured as changed.
func (m *MockVersionControl) IsClean(_ context.Context) (bool, error) {
	m.record("clean")
	return len(m.Changed) == 0, m.ChangedErr
}

// CurrentBranch returns the configured branch.
func (m *MockVersionControl) CurrentBranch() (string, error) {
	return m.Branch, nil
}

// MockEditor is a test double for domain.Editor.
// Fields are ordered to minimize memory padding.
type MockEditor struct {
	OpenErr    error
	ProposeErr error
	Ack        domain.ProposalAck
	Opened     []string
	Requests   []domain.EditRequest
	OpenCalled bool
	mu         sync.Mutex
}

// Ensure MockEditor implements domain.Editor interface.
var _ domain.Editor = (*MockEditor)(nil)

// OpenFiles records the paths and returns them as opened.
func (m *MockEditor) OpenFiles(_ context.Context, paths []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalled = true
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	m.Opened = append([]string(nil), paths...)
	return paths, nil
}

// ProposeEdit records the request.
func (m *MockEditor) ProposeEdit(_ context.Context, req domain.EditRequest) (domain.ProposalAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.ProposeErr != nil {
		return domain.ProposalAck{}, m.ProposeErr
	}
	return m.Ack, nil
}

// MockDecisionSource is a test double for domain.DecisionSource.
// A nil Decisions channel answers every Await with Decision immediately.
type MockDecisionSource struct {
	Err       error
	Decisions chan domain.Decision
	Decision  domain.Decision
	Awaited   []string
	Since     []time.Time
	mu        sync.Mutex
}

// Ensure MockDecisionSource implements domain.DecisionSource interface.
var _ domain.DecisionSource = (*MockDecisionSource)(nil)

// Await returns the configured decision or waits on Decisions.
func (m *MockDecisionSource) Await(ctx context.Context, taskID string, since time.Time) (domain.Decision, error) {
	m.mu.Lock()
	m.Awaited = append(m.Awaited, taskID)
	m.Since = append(m.Since, since)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.Decisions == nil {
		return m.Decision, nil
	}
	select {
	case d := <-m.Decisions:
		return d, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// MockDecisionSink is a test double for domain.DecisionSink.
type MockDecisionSink struct {
	Err  error
	Sent map[string]domain.Decision
}

// Ensure MockDecisionSink implements domain.DecisionSink interface.
var _ domain.DecisionSink = (*MockDecisionSink)(nil)

// Send records the decision.
func (m *MockDecisionSink) Send(_ context.Context, taskID string, d domain.Decision) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Sent == nil {
		m.Sent = make(map[string]domain.Decision)
	}
	m.Sent[taskID] = d
	return nil
}

// Notification is one recorded Notify call.
type Notification struct {
	TaskID  string
	Status  domain.Status
	Details string
}

// MockNotifier is a test double for domain.Notifier.
type MockNotifier struct {
	Err  error
	Sent []Notification
	mu   sync.Mutex
}

// Ensure MockNotifier implements domain.Notifier interface.
var _ domain.Notifier = (*MockNotifier)(nil)

// Notify records the notification and returns the configured error.
func (m *MockNotifier) Notify(_ context.Context, taskID string, status domain.Status, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, Notification{TaskID: taskID, Status: status, Details: details})
	return m.Err
}

// MockCommitGate is a test double for domain.CommitGate.
type MockCommitGate struct {
	AcquireErr error
	Held       bool
	Acquired   int
}

// Ensure MockCommitGate implements domain.CommitGate interface.
var _ domain.CommitGate = (*MockCommitGate)(nil)

// Acquire takes the gate unless an error is configured.
func (m *MockCommitGate) Acquire(_ context.Context) (func(), error) {
	if m.AcquireErr != nil {
		return nil, m.AcquireErr
	}
	m.Acquired++
	m.Held = true
	return func() { m.Held = false }, nil
}

// TryAcquire fails with domain.ErrCommitInFlight while the gate is held.
func (m *MockCommitGate) TryAcquire() (func(), error) {
	if m.Held {
		return nil, domain.ErrCommitInFlight
	}
	return m.Acquire(context.Background())
}

// MockDispatchTracker is a test double for domain.DispatchTracker.
type MockDispatchTracker struct {
	Settled []domain.Status
	mu      sync.Mutex
}

// Ensure MockDispatchTracker implements domain.DispatchTracker interface.
var _ domain.DispatchTracker = (*MockDispatchTracker)(nil)

// Settle records the status.
func (m *MockDispatchTracker) Settle(_ string, status domain.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settled = append(m.Settled, status)
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or the defaults.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// LoadGlobal returns the same as Load.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	return m.Load()
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr   error
	InitGlobalErr error
	RenderErr     error
	RepoInfo      domain.ConfigInfo
	GlobalInfo    domain.ConfigInfo
	Rendered      string
	InitRepoCfg   *domain.Config
	InitGlobalCfg *domain.Config
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoInfo
}

// GetGlobalConfigInfo returns the configured global info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalInfo
}

// InitRepoConfig records the config.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	if m.InitRepoErr != nil {
		return m.InitRepoErr
	}
	m.InitRepoCfg = cfg
	return nil
}

// InitGlobalConfig records the config.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	if m.InitGlobalErr != nil {
		return m.InitGlobalErr
	}
	m.InitGlobalCfg = cfg
	return nil
}

// RenderEffective returns the configured rendering.
func (m *MockConfigManager) RenderEffective(_ *domain.Config) (string, error) {
	return m.Rendered, m.RenderErr
}
