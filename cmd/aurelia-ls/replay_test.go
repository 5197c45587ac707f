package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/workspace"
)

func recordScenario(t *testing.T, dir string, uri ids.DocumentURI) []recordedStep {
	t.Helper()
	req := serveRequest{Command: "open", URI: uri, Text: `<div>hello</div>`, Version: 1}

	var out bytes.Buffer
	var in bytes.Buffer
	enc := json.NewEncoder(&in)
	require.NoError(t, enc.Encode(req))
	require.NoError(t, runServe(context.Background(), dir, &in, &out, nopTestLogger{}))

	var env workspace.Envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &env))

	return []recordedStep{{Label: "open scratch", Request: req, Envelope: env}}
}

func TestReplayReportsNoDivergenceAgainstFreshIdenticalWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<div>hello</div>`)
	uri := ids.DocumentURI("file://" + filepath.ToSlash(filepath.Join(dir, "scratch.html")))

	steps := recordScenario(t, dir, uri)
	raw, err := json.Marshal(steps)
	require.NoError(t, err)
	scenarioPath := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(scenarioPath, raw, 0o644))

	var out bytes.Buffer
	require.NoError(t, runReplay(context.Background(), scenarioPath, dir, &out, nopTestLogger{}))
	assert.Contains(t, out.String(), "0 divergence(s)")
}

func TestReplayReportsDivergenceWhenRecordedEnvelopeIsAltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<div>hello</div>`)
	uri := ids.DocumentURI("file://" + filepath.ToSlash(filepath.Join(dir, "scratch.html")))

	steps := recordScenario(t, dir, uri)
	steps[0].Envelope.Status = workspace.Status("not-a-real-status")

	raw, err := json.Marshal(steps)
	require.NoError(t, err)
	scenarioPath := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(scenarioPath, raw, 0o644))

	var out bytes.Buffer
	err = runReplay(context.Background(), scenarioPath, dir, &out, nopTestLogger{})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "DIVERGED step 0")
}
