package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/git-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetRepoConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		relayDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		writeConfig(t, relayDir, configContent)

		info := NewManagerWithGlobalDir(relayDir, "").GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(relayDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		relayDir := t.TempDir()

		info := NewManagerWithGlobalDir(relayDir, "").GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(relayDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		globalDir := t.TempDir()
		writeConfig(t, globalDir, "[log]\nlevel = \"debug\"")

		info := NewManagerWithGlobalDir("", globalDir).GetGlobalConfigInfo()
		assert.True(t, info.Exists)
		assert.Equal(t, filepath.Join(globalDir, domain.ConfigFileName), info.Path)
	})

	t.Run("returns empty info when global dir is empty", func(t *testing.T) {
		info := NewManagerWithGlobalDir("", "").GetGlobalConfigInfo()
		assert.Empty(t, info.Path)
		assert.False(t, info.Exists)
	})
}

func TestManager_InitRepoConfig(t *testing.T) {
	t.Run("creates config file and relay directory", func(t *testing.T) {
		relayDir := filepath.Join(t.TempDir(), domain.RelayDirName)

		manager := NewManagerWithGlobalDir(relayDir, "")
		require.NoError(t, manager.InitRepoConfig(domain.NewDefaultConfig()))

		content, err := os.ReadFile(filepath.Join(relayDir, domain.ConfigFileName))
		require.NoError(t, err)
		assert.Contains(t, string(content), "git-relay configuration")
		assert.Contains(t, string(content), "[commit]")
	})

	t.Run("returns error if file already exists", func(t *testing.T) {
		relayDir := t.TempDir()
		writeConfig(t, relayDir, "existing")

		err := NewManagerWithGlobalDir(relayDir, "").InitRepoConfig(domain.NewDefaultConfig())
		assert.ErrorIs(t, err, domain.ErrConfigExists)
	})
}

func TestManager_InitGlobalConfig(t *testing.T) {
	t.Run("creates config file and parent directory", func(t *testing.T) {
		globalDir := filepath.Join(t.TempDir(), domain.GlobalDirName)

		require.NoError(t, NewManagerWithGlobalDir("", globalDir).InitGlobalConfig(domain.NewDefaultConfig()))
		assert.FileExists(t, filepath.Join(globalDir, domain.ConfigFileName))
	})

	t.Run("returns error if global dir is empty", func(t *testing.T) {
		err := NewManagerWithGlobalDir("", "").InitGlobalConfig(domain.NewDefaultConfig())
		assert.Error(t, err)
	})
}

func TestManager_RenderEffective(t *testing.T) {
	cfg := domain.NewDefaultConfig()
	cfg.Commit.MaxDiffLines = 75
	cfg.Warnings = []string{"unknown section: x"}

	out, err := NewManagerWithGlobalDir("", "").RenderEffective(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "max_diff_lines = 75")
	assert.NotContains(t, out, "unknown section")

	var raw map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &raw))
	assert.Empty(t, convertRawToDomainConfig(raw).Warnings)
}
