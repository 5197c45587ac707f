package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/workspace"
)

func TestRunServeRespondsOnePerLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<div>hello</div>`)

	uri := ids.DocumentURI("file://" + filepath.ToSlash(filepath.Join(dir, "scratch.html")))
	reqs := []serveRequest{
		{Command: "open", URI: uri, Text: `<div>hello</div>`, Version: 1},
		{Command: "check", URI: uri},
		{Command: "close", URI: uri},
	}

	var in bytes.Buffer
	enc := json.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}

	var out bytes.Buffer
	require.NoError(t, runServe(context.Background(), dir, &in, &out, nopTestLogger{}))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, len(reqs), "each request produces exactly one response line")

	var first workspace.Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.NotEmpty(t, first.Meta.CommandID)
}

func TestDispatchUnknownCommandReturnsZeroEnvelope(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.html"), `<div>hello</div>`)

	var out bytes.Buffer
	var in bytes.Buffer
	enc := json.NewEncoder(&in)
	require.NoError(t, enc.Encode(serveRequest{Command: "not-a-real-command", URI: ids.DocumentURI("file://x")}))
	require.NoError(t, runServe(context.Background(), dir, &in, &out, nopTestLogger{}))

	var env workspace.Envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &env))
	assert.Empty(t, env.Meta.CommandID)
}

type nopTestLogger struct{}

func (nopTestLogger) Debug(string, ...any) {}
func (nopTestLogger) Warn(string, ...any)  {}
func (nopTestLogger) Error(string, ...any) {}
