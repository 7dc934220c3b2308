package app

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runoshun/git-relay/internal/domain"
	"github.com/runoshun/git-relay/internal/infra/decision"
	"github.com/runoshun/git-relay/internal/tui/confirm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q", dir)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func writeRepoConfig(t *testing.T, root, content string) {
	t.Helper()
	path := domain.RepoConfigPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestNew(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := initRepo(t)

	c, err := New(root)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, root, c.Config.RepoRoot)
	assert.Equal(t, filepath.Join(root, ".relay"), c.Config.RelayDir)
	assert.Equal(t, filepath.Join(root, "tasks"), c.Config.TasksDir)
	assert.Equal(t, c.Config.TasksDir, c.Tasks.Dir())
	assert.Equal(t, root, c.VCS.Root())
}

func TestNew_NotGitRepository(t *testing.T) {
	_, err := New(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestNew_ConfiguredTasksDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := initRepo(t)
	writeRepoConfig(t, root, "[tasks]\ndirectory = \"requests\"\n")

	c, err := New(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "requests"), c.Config.TasksDir)
}

func TestContainer_UseTasksDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := initRepo(t)
	c, err := New(root)
	require.NoError(t, err)

	other := filepath.Join(root, "queue")
	c.UseTasksDir(other)

	assert.Equal(t, other, c.Config.TasksDir)
	assert.Equal(t, other, c.Tasks.Dir())
}

func TestContainer_DecisionSource(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := initRepo(t)

	c, err := New(root)
	require.NoError(t, err)
	assert.IsType(t, &decision.Inbox{}, c.DecisionSource(strings.NewReader(""), &bytes.Buffer{}))

	c.AppConfig.Watch.Decision = domain.DecisionModePrompt
	assert.IsType(t, &confirm.Prompt{}, c.DecisionSource(strings.NewReader(""), &bytes.Buffer{}))
}

func TestContainer_ProcessTaskUseCase_BadPattern(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := initRepo(t)
	c, err := New(root)
	require.NoError(t, err)

	c.AppConfig.Commit.SafeFilePatterns = []string{"[unclosed"}
	_, err = c.ProcessTaskUseCase(c.Inbox, nil)
	assert.Error(t, err)

	c.AppConfig.Commit.SafeFilePatterns = domain.DefaultSafeFilePatterns()
	uc, err := c.WatchTasksUseCase(c.Inbox)
	require.NoError(t, err)
	assert.NotNil(t, uc)
}
