package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Training.ReadSeconds)
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[training]\nread-seconds = 3\nmax-cycles = 10\n[log]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Training.ReadSeconds)
	assert.Equal(t, 3, *cfg.Training.ReadSeconds)
	assert.Equal(t, 10, *cfg.Training.MaxCycles)
	assert.Nil(t, cfg.Training.RestSeconds)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(Template), 0o644))
	_, err := LoadConfig(path)
	require.NoError(t, err)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, filepath.Join("/state", "tuiread", "tuiread.log"), DefaultLogPath())
	assert.Equal(t, filepath.Join("/data", "tuiread", "tuiread.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/cfg", "tuiread", "config.toml"), DefaultConfigPath())
}
