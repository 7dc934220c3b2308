package cli

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/git-relay/internal/app"
	"github.com/runoshun/git-relay/internal/domain"
)

// newConfigTestContainer creates an app.Container with real config infrastructure.
func newConfigTestContainer(t *testing.T) (*app.Container, string) {
	t.Helper()

	repoRoot := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = repoRoot
	require.NoError(t, cmd.Run())

	// Isolate global config
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	container, err := app.New(repoRoot)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	return container, configHome
}

func TestConfigCommand_ShowsEffectiveConfig(t *testing.T) {
	container, _ := newConfigTestContainer(t)

	cmd := newConfigCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, "(not found)")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "[commit]")
}

func TestConfigCommand_Template(t *testing.T) {
	container, _ := newConfigTestContainer(t)

	cmd := newConfigCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--template"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, domain.RenderConfigTemplate(domain.NewDefaultConfig()), buf.String())
	assert.NoFileExists(t, domain.RepoConfigPath(container.Config.RepoRoot))
}

func TestConfigCommand_InitRepo(t *testing.T) {
	container, _ := newConfigTestContainer(t)

	cmd := newConfigCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--init"})

	require.NoError(t, cmd.Execute())

	path := domain.RepoConfigPath(container.Config.RepoRoot)
	assert.Contains(t, buf.String(), "Created config: "+path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[commit]")
}

func TestConfigCommand_InitGlobal(t *testing.T) {
	container, configHome := newConfigTestContainer(t)

	cmd := newConfigCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--init", "--global"})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, domain.GlobalConfigPath(configHome))
	assert.NoFileExists(t, filepath.Join(container.Config.RelayDir, domain.ConfigFileName))
}

func TestConfigCommand_InitTwice(t *testing.T) {
	container, _ := newConfigTestContainer(t)

	cmd := newConfigCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--init"})
	require.NoError(t, cmd.Execute())

	cmd = newConfigCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--init"})
	assert.ErrorIs(t, cmd.Execute(), domain.ErrConfigExists)
}

func TestConfigCommand_FlagConflicts(t *testing.T) {
	container, _ := newConfigTestContainer(t)

	for _, args := range [][]string{{"--init", "--template"}, {"--global"}} {
		cmd := newConfigCommand(container)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), "args %v", args)
	}
}
