package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaultsWhenNoConfigFilePresent(t *testing.T) {
	dir := t.TempDir()
	s := New()
	s.ProjectRoot = dir
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, s.Init(fs))
	assert.Equal(t, filepath.Join(dir, defaultCacheDirName), s.CacheDir)
	assert.False(t, s.Debug)
}

func TestInitMergesYamlConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aurelia.config.yaml"), []byte("cacheDir: /tmp/custom-cache\ndebug: true\n"), 0o644))

	s := New()
	s.ProjectRoot = dir
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, s.Init(fs))
	assert.Equal(t, "/tmp/custom-cache", s.CacheDir)
	assert.True(t, s.Debug)
}

func TestInitFallsBackToTomlWhenYamlAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aurelia.config.toml"), []byte("cacheDir = \"/tmp/toml-cache\"\n"), 0o644))

	s := New()
	s.ProjectRoot = dir
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, s.Init(fs))
	assert.Equal(t, "/tmp/toml-cache", s.CacheDir)
}

func TestInitRejectsConfigFailingSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aurelia.config.yaml"), []byte("debug: \"not-a-bool\"\n"), 0o644))

	s := New()
	s.ProjectRoot = dir
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	err := s.Init(fs)
	assert.Error(t, err)
}

func TestExplicitConfigFlagWins(t *testing.T) {
	dir := t.TempDir()
	altPath := filepath.Join(dir, "alt.yaml")
	require.NoError(t, os.WriteFile(altPath, []byte("cacheDir: /tmp/alt-cache\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aurelia.config.yaml"), []byte("cacheDir: /tmp/default-cache\n"), 0o644))

	s := New()
	s.ProjectRoot = dir
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	s.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config=" + altPath}))

	require.NoError(t, s.Init(fs))
	assert.Equal(t, "/tmp/alt-cache", s.CacheDir)
}
