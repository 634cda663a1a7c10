package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000, cfg.MaxDepth)
	assert.True(t, cfg.Color)
	assert.Equal(t, "script> ", cfg.Prompt)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "max_depth: 50\ncolor: false\nhistory_file: /tmp/hist\n")
	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxDepth)
	assert.False(t, cfg.Color)
	assert.Equal(t, "/tmp/hist", cfg.HistoryFile)
	// untouched keys keep their defaults
	assert.Equal(t, "script> ", cfg.Prompt)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(missing, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "max_depth: [1, 2\n", "decoding YAML"},
		{"unknown key", "colour: true\n", "decoding YAML"},
		{"zero depth", "max_depth: 0\n", "max_depth must be positive"},
		{"negative verbose", "verbose: -1\n", "verbose must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "loading config")
		})
	}
}
