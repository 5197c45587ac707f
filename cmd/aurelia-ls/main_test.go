package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestVersionCommandPrintsSchemaVersion(t *testing.T) {
	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "aurelia-ls")
	assert.Contains(t, out.String(), "schemaVersion")
}

func TestExplainListsCodesWithNoArgument(t *testing.T) {
	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"explain"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "aurelia/unknown-element")
}

func TestExplainUnknownCodeErrors(t *testing.T) {
	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"explain", "aurelia/does-not-exist"})
	assert.Error(t, cmd.Execute())
}

func TestCheckCommandReportsCleanProjectAsExitZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<div>hello</div>`)

	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"check", dir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "file(s) checked")
}

func TestCheckCommandReportsUnknownElementAsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<totally-unknown-element></totally-unknown-element>`)

	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"check", dir})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, out.String(), "unknown-element")
}

func TestCacheStatReportsEmptyCacheWhenNeverPopulated(t *testing.T) {
	dir := t.TempDir()
	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"--project", dir, "cache", "stat"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "empty")
}

func TestCacheClearRemovesNpmAnalysisTree(t *testing.T) {
	dir := t.TempDir()
	entryDir := filepath.Join(dir, ".aurelia-cache", "npm-analysis", "v1", "abc123")
	writeFile(t, filepath.Join(entryDir, "some-pkg.json"), `{"schemaVersion":"v1","package":"some-pkg"}`)

	out := new(bytes.Buffer)
	cmd := newRootCmd(out, out)
	cmd.SetArgs([]string{"--project", dir, "cache", "clear"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(dir, ".aurelia-cache", "npm-analysis"))
	assert.True(t, os.IsNotExist(err))
}
