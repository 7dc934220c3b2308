package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Load_NoFiles(t *testing.T) {
	loader := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir())
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}

func TestLoader_Load_RepoConfigOnly(t *testing.T) {
	relayDir := t.TempDir()
	writeConfig(t, relayDir, `
[tasks]
directory = "changes"

[commit]
safe_file_patterns = ["*.tsx", "content/**/*.md"]
max_diff_lines = 80
branch = "main"

[notify]
webhook_url = "https://hooks.example.com/relay"

[editor]
propose_command = "agent --stdin"

[watch]
decision = "prompt"
debounce_ms = 250

[log]
level = "debug"
`)

	cfg, err := NewLoaderWithGlobalDir(relayDir, t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "changes", cfg.Tasks.Directory)
	assert.Equal(t, []string{"*.tsx", "content/**/*.md"}, cfg.Commit.SafeFilePatterns)
	assert.Equal(t, 80, cfg.Commit.MaxDiffLines)
	assert.Equal(t, "main", cfg.Commit.Branch)
	assert.Equal(t, domain.DefaultRemote, cfg.Commit.Remote)
	assert.True(t, cfg.Commit.AutoCommit)
	assert.Equal(t, "https://hooks.example.com/relay", cfg.Notify.WebhookURL)
	assert.Equal(t, "agent --stdin", cfg.Editor.ProposeCommand)
	assert.Equal(t, domain.DefaultOpenCommand, cfg.Editor.OpenCommand)
	assert.Equal(t, domain.DecisionModePrompt, cfg.Watch.Decision)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_MergeRepoOverridesGlobal(t *testing.T) {
	relayDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, globalDir, `
[commit]
max_diff_lines = 30
remote = "upstream"

[log]
level = "warn"
`)
	writeConfig(t, relayDir, `
[commit]
max_diff_lines = 60
`)

	cfg, err := NewLoaderWithGlobalDir(relayDir, globalDir).Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Commit.MaxDiffLines)  // Overridden by repo
	assert.Equal(t, "upstream", cfg.Commit.Remote) // From global
	assert.Equal(t, "warn", cfg.Log.Level)         // From global
}

func TestLoader_Load_AutoCommitFalseOverrides(t *testing.T) {
	relayDir := t.TempDir()
	globalDir := t.TempDir()
	writeConfig(t, globalDir, "[commit]\nauto_commit = false\n")

	cfg, err := NewLoaderWithGlobalDir(relayDir, globalDir).Load()
	require.NoError(t, err)
	assert.False(t, cfg.Commit.AutoCommit)

	// Repo can re-enable what global disabled.
	writeConfig(t, relayDir, "[commit]\nauto_commit = true\n")
	cfg, err = NewLoaderWithGlobalDir(relayDir, globalDir).Load()
	require.NoError(t, err)
	assert.True(t, cfg.Commit.AutoCommit)
}

func TestLoader_Load_EmptyPatternListDisablesAll(t *testing.T) {
	relayDir := t.TempDir()
	writeConfig(t, relayDir, "[commit]\nsafe_file_patterns = []\n")

	cfg, err := NewLoaderWithGlobalDir(relayDir, t.TempDir()).Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Commit.SafeFilePatterns)
}

func TestLoader_Load_Warnings(t *testing.T) {
	relayDir := t.TempDir()
	writeConfig(t, relayDir, `
[commit]
max_diff_lines = "many"
colour = "red"

[watch]
decision = "telepathy"

[workers]
default = "x"
`)

	cfg, err := NewLoaderWithGlobalDir(relayDir, t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"invalid value type in [commit]: max_diff_lines",
		"invalid value type in [watch]: decision",
		"unknown key in [commit]: colour",
		"unknown section: workers",
	}, cfg.Warnings)
	// Invalid values keep the defaults.
	assert.Equal(t, domain.DefaultMaxDiffLines, cfg.Commit.MaxDiffLines)
	assert.Equal(t, domain.DecisionModeInbox, cfg.Watch.Decision)
}

func TestLoader_Load_InvalidTOML(t *testing.T) {
	relayDir := t.TempDir()
	writeConfig(t, relayDir, "[commit\n")

	_, err := NewLoaderWithGlobalDir(relayDir, t.TempDir()).Load()
	assert.Error(t, err)
}

func TestLoader_LoadGlobal_NoDir(t *testing.T) {
	_, err := NewLoaderWithGlobalDir(t.TempDir(), "").LoadGlobal()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_RenderedTemplateLoadsWithoutWarnings(t *testing.T) {
	relayDir := t.TempDir()
	writeConfig(t, relayDir, domain.RenderConfigTemplate(domain.NewDefaultConfig()))

	cfg, err := NewLoaderWithGlobalDir(relayDir, t.TempDir()).Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)
	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}
