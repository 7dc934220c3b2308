// Package app provides the dependency injection container for the application.
package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/infra/config"
	"github.com/runoshun/git-relay/internal/infra/decision"
	"github.com/runoshun/git-relay/internal/infra/editor"
	"github.com/runoshun/git-relay/internal/infra/executor"
	"github.com/runoshun/git-relay/internal/infra/git"
	"github.com/runoshun/git-relay/internal/infra/lock"
	"github.com/runoshun/git-relay/internal/infra/logging"
	"github.com/runoshun/git-relay/internal/infra/notify"
	"github.com/runoshun/git-relay/internal/infra/taskstore"
	"github.com/runoshun/git-relay/internal/infra/watcher"
	"github.com/runoshun/git-relay/internal/policy"
	"github.com/runoshun/git-relay/internal/tui/confirm"
	"github.com/runoshun/git-relay/internal/usecase"
	"github.com/runoshun/git-relay/internal/usecase/shared"
)

// Config holds the application configuration paths.
type Config struct {
	RepoRoot string // Root directory of the git repository
	GitDir   string // Path to .git directory
	RelayDir string // Path to .relay state directory
	TasksDir string // Directory holding CHANGE-<id>.json files
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tasks         domain.TaskRepository
	VCS           domain.VersionControl
	Clock         domain.Clock
	Executor      domain.CommandExecutor
	Gate          domain.CommitGate
	Inbox         *decision.Inbox
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	Logger     *slog.Logger
	TaskLogger *logging.Logger
	AppConfig  *domain.Config

	// Configuration
	Config Config

	git *git.Client
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string) (*Container, error) {
	gitClient, err := git.NewClient(dir)
	if err != nil {
		return nil, err
	}

	repoRoot := gitClient.Root()
	relayDir := domain.RepoRelayDir(repoRoot)

	configLoader := config.NewLoader(relayDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		// Broken config files are reported by the commands that read them.
		appConfig = domain.NewDefaultConfig()
	}

	cfg := Config{
		RepoRoot: repoRoot,
		GitDir:   gitClient.GitDir(),
		RelayDir: relayDir,
		TasksDir: appConfig.TasksDir(repoRoot),
	}
	gitClient.Ignore(cfg.TasksDir, cfg.RelayDir)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(appConfig.Log.Level),
	}))

	return &Container{
		Tasks:         taskstore.New(cfg.TasksDir),
		VCS:           gitClient,
		Clock:         domain.RealClock{},
		Executor:      executor.NewClient(),
		Gate:          lock.NewGate(cfg.RelayDir),
		Inbox:         decision.NewInbox(cfg.RelayDir),
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(relayDir),
		Logger:        logger,
		TaskLogger:    logging.New(cfg.RelayDir, logging.ParseLevel(appConfig.Log.Level)),
		AppConfig:     appConfig,
		Config:        cfg,
		git:           gitClient,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, tasks domain.TaskRepository, vcs domain.VersionControl, clock domain.Clock, logger *slog.Logger) *Container {
	return &Container{
		Tasks:        tasks,
		VCS:          vcs,
		Clock:        clock,
		Executor:     executor.NewClient(),
		Gate:         lock.NewGate(""),
		Inbox:        decision.NewInbox(cfg.RelayDir),
		ConfigLoader: config.NewLoader(cfg.RelayDir),
		Logger:       logger,
		TaskLogger:   logging.New("", slog.LevelInfo),
		AppConfig:    domain.NewDefaultConfig(),
		Config:       cfg,
	}
}

// UseTasksDir points the task store at dir instead of the configured directory.
func (c *Container) UseTasksDir(dir string) {
	c.Config.TasksDir = dir
	c.Tasks = taskstore.New(dir)
	if c.git != nil {
		c.git.Ignore(dir)
	}
}

// Close releases open log files.
func (c *Container) Close() error {
	if c.TaskLogger == nil {
		return nil
	}
	return c.TaskLogger.Close()
}

// UseCase factory methods

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Tasks, c.Clock, c.TaskLogger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Tasks)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.TaskLogger)
}

// ArchiveTaskUseCase returns a new ArchiveTask use case.
func (c *Container) ArchiveTaskUseCase() *usecase.ArchiveTask {
	return usecase.NewArchiveTask(c.Tasks, c.TaskLogger)
}

// RequeueTaskUseCase returns a new RequeueTask use case.
func (c *Container) RequeueTaskUseCase() *usecase.RequeueTask {
	return usecase.NewRequeueTask(c.Tasks, c.Clock, c.TaskLogger)
}

// DecideTaskUseCase returns a new DecideTask use case.
func (c *Container) DecideTaskUseCase() *usecase.DecideTask {
	return usecase.NewDecideTask(c.Tasks, c.Inbox, c.TaskLogger)
}

// RevertTaskUseCase returns a new RevertTask use case.
func (c *Container) RevertTaskUseCase() *usecase.RevertTask {
	return usecase.NewRevertTask(c.Tasks, c.VCS, c.Gate, c.TaskLogger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// DecisionSource returns the configured source of human decisions.
// The prompt mode reads keys from in and draws to out.
func (c *Container) DecisionSource(in io.Reader, out io.Writer) domain.DecisionSource {
	if c.AppConfig.Watch.Decision == domain.DecisionModePrompt {
		return confirm.NewPrompt(c.Tasks, in, out)
	}
	return c.Inbox
}

// ProcessTaskUseCase returns a new ProcessTask use case.
// tracker may be nil when no watcher is running.
func (c *Container) ProcessTaskUseCase(decisions domain.DecisionSource, tracker domain.DispatchTracker) (*usecase.ProcessTask, error) {
	cfg := c.AppConfig
	safety, err := policy.FromConfig(cfg.Commit)
	if err != nil {
		return nil, err
	}
	commits := shared.NewCommitSequence(c.VCS, safety, c.Gate, c.TaskLogger, cfg.Commit.Remote, cfg.Commit.Branch)
	editorGateway := editor.NewFromConfig(c.Executor, c.TaskLogger, cfg.Editor, c.Config.RepoRoot)

	return usecase.NewProcessTask(
		c.Tasks,
		c.VCS,
		editorGateway,
		decisions,
		notify.FromConfig(cfg.Notify),
		safety,
		commits,
		tracker,
		c.Clock,
		c.TaskLogger,
	), nil
}

// WatchTasksUseCase returns a new WatchTasks use case wired to a filesystem watcher.
func (c *Container) WatchTasksUseCase(decisions domain.DecisionSource) (*usecase.WatchTasks, error) {
	w := watcher.New(c.Config.TasksDir, c.Tasks, watcher.Options{
		Logger:   c.TaskLogger,
		Debounce: c.AppConfig.Watch.Debounce(),
	})
	process, err := c.ProcessTaskUseCase(decisions, w.Dispatch())
	if err != nil {
		return nil, err
	}
	return usecase.NewWatchTasks(w, process, c.TaskLogger), nil
}
