package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, cfg.DefaultLimit)
	assert.Equal(t, DefaultVersion, cfg.Version)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("default_limit: 250\nversion: \"1.1\"\n"), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.DefaultLimit)
	assert.Equal(t, "1.1", cfg.Version)
}

func TestLoad_ConfigFileDiscoveredUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("default_limit: 42\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.DefaultLimit)
}

func TestLoad_ExplicitFileSkipsDiscovery(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("default_limit: 1\n"), 0o644))

	explicit := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("default_limit: 2\n"), 0o644))

	cfg, err := Load(dir, explicit)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DefaultLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("default_limit: 250\n"), 0o644))

	t.Setenv("FETCHPIPE_DEFAULT_LIMIT", "75")
	t.Setenv("FETCHPIPE_VERSION", "1.2")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.DefaultLimit)
	assert.Equal(t, "1.2", cfg.Version)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(t.TempDir(), "/nonexistent/fetchpipe.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("default_limit: [not a number\n"), 0o644))

	_, err := Load(dir, "")
	require.Error(t, err)
}
