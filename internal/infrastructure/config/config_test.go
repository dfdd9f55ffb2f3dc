package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30.0, cfg.Engine.K)
	assert.Equal(t, 200.0, cfg.Engine.DefaultRating)
	assert.Equal(t, 97.0, cfg.Resolver.Thresholds["startgg"])
	assert.Equal(t, 93.0, cfg.Resolver.Thresholds["liquipedia"])
	assert.Empty(t, cfg.SQLite.Path)
}

func TestLoad(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteDefault(base))

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.Engine.K)
	assert.Equal(t, 93.0, cfg.Resolver.Thresholds["liquipedia"])
}

func TestLoadMissingConfig(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "config file not found")
}

func TestLoadPartialOverridesKeepDefaults(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(base), 0755))
	partial := "engine:\n  k: 24\n"
	require.NoError(t, os.WriteFile(ConfigFilePath(base), []byte(partial), 0644))

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, 24.0, cfg.Engine.K)
	assert.Equal(t, 97.0, cfg.Resolver.Thresholds["startgg"], "unset sections keep defaults")
}

func TestLoadEnvOverride(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteDefault(base))
	t.Setenv("CIRCUITELO_DB", "/tmp/elsewhere.db")

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.SQLite.Path)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.DBPath(base))
}

func TestDBPathDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/base", DefaultConfigDir, DefaultDBFile), cfg.DBPath("/base"))
}

func TestSourceThresholds(t *testing.T) {
	thresholds := Default().SourceThresholds()
	assert.Equal(t, 97.0, thresholds[records.SourceStartGG])
	assert.Equal(t, 93.0, thresholds[records.SourceLiquipedia])
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, WriteDefault(base))
	assert.ErrorContains(t, WriteDefault(base), "already exists")
}

func TestExists(t *testing.T) {
	base := t.TempDir()
	assert.False(t, Exists(base))
	require.NoError(t, WriteDefault(base))
	assert.True(t, Exists(base))
}
