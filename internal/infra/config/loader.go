// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/git-relay/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	relayDir      string // Path to <repo>/.relay directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/git-relay)
}

// NewLoader creates a new Loader.
func NewLoader(relayDir string) *Loader {
	return &Loader{
		relayDir:      relayDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(relayDir, globalConfDir string) *Loader {
	return &Loader{
		relayDir:      relayDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalRelayDir(configHome)
}

// Load returns the merged configuration (repo + global).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- repo (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	return l.loadFile(filepath.Join(l.relayDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warnType := func(section, key string) {
		warnings = append(warnings, fmt.Sprintf("invalid value type in [%s]: %s", section, key))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		switch section {
		case "tasks":
			for k, v := range m {
				switch k {
				case "directory":
					if s, ok := v.(string); ok {
						res.Tasks.Directory = s
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [tasks]: %s", k))
				}
			}
		case "commit":
			for k, v := range m {
				switch k {
				case "auto_commit":
					if b, ok := v.(bool); ok {
						res.Commit.AutoCommit = b
						res.Commit.AutoCommitSet = true
					} else {
						warnType(section, k)
					}
				case "safe_file_patterns":
					if patterns, ok := toStringSlice(v); ok {
						res.Commit.SafeFilePatterns = patterns
					} else {
						warnType(section, k)
					}
				case "max_diff_lines":
					if n, ok := v.(int64); ok && n > 0 {
						res.Commit.MaxDiffLines = int(n)
					} else {
						warnType(section, k)
					}
				case "remote":
					if s, ok := v.(string); ok {
						res.Commit.Remote = s
					} else {
						warnType(section, k)
					}
				case "branch":
					if s, ok := v.(string); ok {
						res.Commit.Branch = s
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [commit]: %s", k))
				}
			}
		case "notify":
			for k, v := range m {
				switch k {
				case "webhook_url":
					if s, ok := v.(string); ok {
						res.Notify.WebhookURL = s
					} else {
						warnType(section, k)
					}
				case "timeout_sec":
					if n, ok := v.(int64); ok && n > 0 {
						res.Notify.TimeoutSec = int(n)
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [notify]: %s", k))
				}
			}
		case "editor":
			for k, v := range m {
				switch k {
				case "open_command":
					if s, ok := v.(string); ok {
						res.Editor.OpenCommand = s
					} else {
						warnType(section, k)
					}
				case "propose_command":
					if s, ok := v.(string); ok {
						res.Editor.ProposeCommand = s
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [editor]: %s", k))
				}
			}
		case "watch":
			for k, v := range m {
				switch k {
				case "decision":
					if s, ok := v.(string); ok && domain.DecisionMode(s).IsValid() {
						res.Watch.Decision = domain.DecisionMode(s)
					} else {
						warnType(section, k)
					}
				case "debounce_ms":
					if n, ok := v.(int64); ok && n > 0 {
						res.Watch.DebounceMS = int(n)
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [watch]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					} else {
						warnType(section, k)
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

func toStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Tasks:    base.Tasks,
		Commit:   base.Commit,
		Notify:   base.Notify,
		Editor:   base.Editor,
		Watch:    base.Watch,
		Log:      base.Log,
		Warnings: append([]string(nil), base.Warnings...),
	}
	result.Commit.SafeFilePatterns = append([]string(nil), base.Commit.SafeFilePatterns...)

	// Add override warnings
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.Tasks.Directory != "" {
		result.Tasks.Directory = override.Tasks.Directory
	}
	if override.Commit.AutoCommitSet {
		result.Commit.AutoCommit = override.Commit.AutoCommit
		result.Commit.AutoCommitSet = true
	}
	if override.Commit.SafeFilePatterns != nil {
		result.Commit.SafeFilePatterns = append([]string(nil), override.Commit.SafeFilePatterns...)
	}
	if override.Commit.MaxDiffLines != 0 {
		result.Commit.MaxDiffLines = override.Commit.MaxDiffLines
	}
	if override.Commit.Remote != "" {
		result.Commit.Remote = override.Commit.Remote
	}
	if override.Commit.Branch != "" {
		result.Commit.Branch = override.Commit.Branch
	}
	if override.Notify.WebhookURL != "" {
		result.Notify.WebhookURL = override.Notify.WebhookURL
	}
	if override.Notify.TimeoutSec != 0 {
		result.Notify.TimeoutSec = override.Notify.TimeoutSec
	}
	if override.Editor.OpenCommand != "" {
		result.Editor.OpenCommand = override.Editor.OpenCommand
	}
	if override.Editor.ProposeCommand != "" {
		result.Editor.ProposeCommand = override.Editor.ProposeCommand
	}
	if override.Watch.Decision != "" {
		result.Watch.Decision = override.Watch.Decision
	}
	if override.Watch.DebounceMS != 0 {
		result.Watch.DebounceMS = override.Watch.DebounceMS
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return result
}
