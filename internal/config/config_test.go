package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/shacopy/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "shacopy")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Copy.BlockSize)
	assert.Nil(t, cfg.Verify.Threaded)
	assert.Nil(t, cfg.Theme.Green)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[copy]
block_size = "256K"
queue_depth = 32
overwrite_policy = "never"
bwlimit = "100MB"

[verify]
block_size = "1M"
queue_depth = 4
threaded = true
parallel = true
convert_separators = false

[theme]
green = "#00ff00"
red = "#ff0000"
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Copy.BlockSize)
	assert.Equal(t, "256K", *cfg.Copy.BlockSize)
	require.NotNil(t, cfg.Copy.QueueDepth)
	assert.Equal(t, 32, *cfg.Copy.QueueDepth)
	require.NotNil(t, cfg.Copy.OverwritePolicy)
	assert.Equal(t, "never", *cfg.Copy.OverwritePolicy)
	require.NotNil(t, cfg.Copy.BWLimit)
	assert.Equal(t, "100MB", *cfg.Copy.BWLimit)

	require.NotNil(t, cfg.Verify.BlockSize)
	assert.Equal(t, "1M", *cfg.Verify.BlockSize)
	require.NotNil(t, cfg.Verify.QueueDepth)
	assert.Equal(t, 4, *cfg.Verify.QueueDepth)
	require.NotNil(t, cfg.Verify.Threaded)
	assert.True(t, *cfg.Verify.Threaded)
	require.NotNil(t, cfg.Verify.Parallel)
	assert.True(t, *cfg.Verify.Parallel)
	require.NotNil(t, cfg.Verify.ConvertSeparators)
	assert.False(t, *cfg.Verify.ConvertSeparators)

	require.NotNil(t, cfg.Theme.Green)
	assert.Equal(t, "#00ff00", *cfg.Theme.Green)
	require.NotNil(t, cfg.Theme.Red)
	assert.Equal(t, "#ff0000", *cfg.Theme.Red)

	// Unset fields should remain nil.
	assert.Nil(t, cfg.Theme.Muted)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[verify]
threaded = true
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	// Copy section entirely absent.
	assert.Nil(t, cfg.Copy.BlockSize)
	assert.Nil(t, cfg.Copy.OverwritePolicy)

	require.NotNil(t, cfg.Verify.Threaded)
	assert.True(t, *cfg.Verify.Threaded)
	assert.Nil(t, cfg.Verify.Parallel)
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "invalid [[[")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_UnknownKey(t *testing.T) {
	writeConfig(t, `
[copy]
workers = 8
`)

	_, err := config.Load()
	var unknown *config.UnknownKeyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "copy.workers", unknown.Key)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/shacopy/config.toml", config.Path())
}
