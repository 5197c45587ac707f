package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/cliconfig"
	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
	"github.com/aurelia-tools/aurelia-ls/internal/log"
	"github.com/aurelia-tools/aurelia-ls/internal/workspace"
)

// serveRequest is one newline-delimited JSON request read from stdin by
// `aurelia-ls serve`. It is deliberately minimal — a host embeds this
// binary behind its own LSP/editor-protocol translation layer, which is
// outside this tool's scope (spec.md §1 Non-goals: "no LSP server
// implementation, only the engine an LSP server would wrap").
type serveRequest struct {
	Command string          `json:"command"`
	URI     ids.DocumentURI `json:"uri"`
	Text    string          `json:"text,omitempty"`
	Version int             `json:"version,omitempty"`
	Offset  int             `json:"offset,omitempty"`
	NewName string          `json:"newName,omitempty"`
}

func newServeCmd(settings *cliconfig.Settings, out, errOut io.Writer, logger func() log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [project]",
		Short: "Run the workspace engine over stdio, one JSON command per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := settings.ProjectRoot
			if len(args) == 1 {
				root = args[0]
			}
			return runServe(cmd.Context(), root, cmd.InOrStdin(), out, logger())
		},
	}
	return cmd
}

func runServe(ctx context.Context, root string, in io.Reader, out io.Writer, logger log.Logger) error {
	project, err := loadProject(root)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}

	cache := discovery.FileCache{ProjectRoot: project.Root}
	e := workspace.NewEngine(workspace.Host{
		Markup:      hostiface.NewDefaultMarkupParser(),
		Expr:        hostiface.NewDefaultExpressionParser(),
		Recognizers: discovery.DefaultRecognizers(cache),
	})
	if _, err := e.RebuildResourceGraph(ctx, project, nil, nil); err != nil {
		return fmt.Errorf("building resource graph: %w", err)
	}
	logger.Debug("workspace ready", "files", len(project.Files))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req serveRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logger.Warn("malformed request", "error", err.Error())
			continue
		}
		env := dispatch(ctx, e, req)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, e *workspace.Engine, req serveRequest) workspace.Envelope {
	switch req.Command {
	case "open":
		e.OpenDoc(req.URI, req.Text, req.Version)
		return e.Check(ctx, req.URI)
	case "update":
		e.UpdateDoc(req.URI, req.Text, req.Version)
		return e.Check(ctx, req.URI)
	case "close":
		e.CloseDoc(req.URI)
		return workspace.Envelope{}
	case "check":
		return e.Check(ctx, req.URI)
	case "hover":
		return e.Hover(ctx, req.URI, req.Offset)
	case "definition":
		return e.Definition(ctx, req.URI, req.Offset)
	case "references":
		return e.References(ctx, req.URI, req.Offset)
	case "rename":
		return e.Rename(ctx, req.URI, req.Offset, req.NewName)
	case "semanticTokens":
		return e.SemanticTokens(ctx, req.URI)
	default:
		return workspace.Envelope{}
	}
}
