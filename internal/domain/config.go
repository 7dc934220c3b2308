package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	Tasks    TasksConfig  `toml:"tasks"`
	Commit   CommitConfig `toml:"commit"`
	Notify   NotifyConfig `toml:"notify"`
	Editor   EditorConfig `toml:"editor"`
	Watch    WatchConfig  `toml:"watch"`
	Log      LogConfig    `toml:"log"`
}

// TasksConfig holds task storage settings from [tasks] section.
type TasksConfig struct {
	Directory string `toml:"directory,omitempty"` // Tasks directory, relative to the repository root
}

// CommitConfig holds auto-commit settings from [commit] section.
// Fields are ordered to minimize memory padding.
type CommitConfig struct {
	SafeFilePatterns []string `toml:"safe_file_patterns"` // Globs a scope path must match to auto-commit
	Remote           string   `toml:"remote,omitempty"`   // Push remote (default: origin)
	Branch           string   `toml:"branch,omitempty"`   // Push branch (empty: current branch)
	MaxDiffLines     int      `toml:"max_diff_lines"`     // Ceiling for inserted+deleted lines
	AutoCommit       bool     `toml:"auto_commit"`        // Feature switch for unattended commits
	AutoCommitSet    bool     `toml:"-"`                  // True if auto_commit was explicitly set in config
}

// NotifyConfig holds outcome notification settings from [notify] section.
type NotifyConfig struct {
	WebhookURL string `toml:"webhook_url,omitempty"` // Empty disables notifications
	TimeoutSec int    `toml:"timeout_sec,omitempty"` // HTTP timeout in seconds
}

// Timeout returns the notification timeout as a duration.
func (c NotifyConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultNotifyTimeoutSec * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// EditorConfig holds editor settings from [editor] section.
type EditorConfig struct {
	OpenCommand    string `toml:"open_command,omitempty"`    // Command used to open scope files
	ProposeCommand string `toml:"propose_command,omitempty"` // Command receiving the edit prompt on stdin
}

// DecisionMode selects where human accept/reject signals come from.
type DecisionMode string

// Valid decision modes.
const (
	DecisionModeInbox  DecisionMode = "inbox"  // `relay decide` writes to a file inbox
	DecisionModePrompt DecisionMode = "prompt" // Interactive terminal prompt
)

// IsValid returns true if the mode is a known value.
func (m DecisionMode) IsValid() bool {
	return m == DecisionModeInbox || m == DecisionModePrompt
}

// WatchConfig holds watcher settings from [watch] section.
type WatchConfig struct {
	Decision   DecisionMode `toml:"decision,omitempty"`    // inbox (default) or prompt
	DebounceMS int          `toml:"debounce_ms,omitempty"` // Quiet period before a file event fires
}

// Debounce returns the quiet period as a duration.
func (c WatchConfig) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and initializes config files.
type ConfigManager interface {
	GetRepoConfigInfo() ConfigInfo
	GetGlobalConfigInfo() ConfigInfo
	InitRepoConfig(cfg *Config) error
	InitGlobalConfig(cfg *Config) error
	RenderEffective(cfg *Config) (string, error)
}

// Directory and file names for git-relay.
const (
	RelayDirName    = ".relay"      // Per-repository state directory
	GlobalDirName   = "git-relay"   // Directory under XDG_CONFIG_HOME
	ConfigFileName  = "config.toml" // Config file name
	ArchiveDirName  = "archive"     // Terminal task history, read-only
	DecisionDirName = "decisions"   // Decision inbox root
)

// Default configuration values.
const (
	DefaultTasksDirectory   = "tasks"
	DefaultMaxDiffLines     = 50
	DefaultRemote           = "origin"
	DefaultOpenCommand      = "code"
	DefaultDebounceMS       = 500
	DefaultNotifyTimeoutSec = 10
	DefaultLogLevel         = "info"
)

// DefaultSafeFilePatterns returns the default globs for auto-commit-safe paths.
func DefaultSafeFilePatterns() []string {
	return []string{"*.tsx", "*.ts", "*.css", "*.json", "*.md"}
}

// RepoRelayDir returns the relay state directory for a repository.
func RepoRelayDir(repoRoot string) string {
	return filepath.Join(repoRoot, RelayDirName)
}

// RepoConfigPath returns the repo config path.
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(RepoRelayDir(repoRoot), ConfigFileName)
}

// GlobalRelayDir returns the global relay directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalRelayDir(configHome string) string {
	return filepath.Join(configHome, GlobalDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalRelayDir(configHome), ConfigFileName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Tasks: TasksConfig{
			Directory: DefaultTasksDirectory,
		},
		Commit: CommitConfig{
			AutoCommit:       true,
			SafeFilePatterns: DefaultSafeFilePatterns(),
			MaxDiffLines:     DefaultMaxDiffLines,
			Remote:           DefaultRemote,
		},
		Notify: NotifyConfig{
			TimeoutSec: DefaultNotifyTimeoutSec,
		},
		Editor: EditorConfig{
			OpenCommand: DefaultOpenCommand,
		},
		Watch: WatchConfig{
			Decision:   DecisionModeInbox,
			DebounceMS: DefaultDebounceMS,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// TasksDir resolves the tasks directory against the repository root.
func (c *Config) TasksDir(repoRoot string) string {
	dir := c.Tasks.Directory
	if dir == "" {
		dir = DefaultTasksDirectory
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(repoRoot, dir)
}

// templateData holds all data for rendering the config template.
type templateData struct {
	TasksDirectory   string
	SafeFilePatterns string
	Remote           string
	OpenCommand      string
	Decision         DecisionMode
	LogLevel         string
	MaxDiffLines     int
	DebounceMS       int
	TimeoutSec       int
	AutoCommit       bool
}

// RenderConfigTemplate renders the commented config template from cfg.
func RenderConfigTemplate(cfg *Config) string {
	quoted := make([]string, 0, len(cfg.Commit.SafeFilePatterns))
	for _, p := range cfg.Commit.SafeFilePatterns {
		quoted = append(quoted, fmt.Sprintf("%q", p))
	}

	data := templateData{
		TasksDirectory:   cfg.Tasks.Directory,
		AutoCommit:       cfg.Commit.AutoCommit,
		SafeFilePatterns: "[" + strings.Join(quoted, ", ") + "]",
		MaxDiffLines:     cfg.Commit.MaxDiffLines,
		Remote:           cfg.Commit.Remote,
		OpenCommand:      cfg.Editor.OpenCommand,
		Decision:         cfg.Watch.Decision,
		DebounceMS:       cfg.Watch.DebounceMS,
		TimeoutSec:       cfg.Notify.TimeoutSec,
		LogLevel:         cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
