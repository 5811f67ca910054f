package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_DecodesPresentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lc1c.toml")
	content := "[optimize]\nlevel = \"deep\"\n\n[output]\nunix2dos = true\nverbose = true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, string(OptimizeDeep), cfg.Optimize.Level)
	assert.True(t, cfg.Output.Unix2Dos)
	assert.True(t, cfg.Output.Verbose)
}

func TestLoadConfig_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lc1c.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
