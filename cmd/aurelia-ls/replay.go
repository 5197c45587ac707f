package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/cliconfig"
	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/log"
	"github.com/aurelia-tools/aurelia-ls/internal/workspace"
)

// recordedStep is one scenario step as written to disk: the request that
// produced it, plus the envelope observed at recording time. A scenario
// file is just a JSON array of these, in replay order.
type recordedStep struct {
	Label    string             `json:"label"`
	Request  serveRequest       `json:"request"`
	Envelope workspace.Envelope `json:"envelope"`
}

func newReplayCmd(settings *cliconfig.Settings, out io.Writer, logger func() log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <scenario.json> [project]",
		Short: "Replay a recorded pressure scenario against a fresh workspace and report divergences",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := settings.ProjectRoot
			if len(args) == 2 {
				root = args[1]
			}
			return runReplay(cmd.Context(), args[0], root, out, logger())
		},
	}
	return cmd
}

func runReplay(ctx context.Context, scenarioPath, root string, out io.Writer, logger log.Logger) error {
	raw, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}
	var steps []recordedStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		return fmt.Errorf("parsing scenario: %w", err)
	}

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

	scenario := &workspace.Scenario{}
	for _, step := range steps {
		step := step
		scenario.Commands = append(scenario.Commands, workspace.RecordedCommand{
			Label:    step.Label,
			Envelope: step.Envelope,
			Invoke: func(ctx context.Context) workspace.Envelope {
				return dispatch(ctx, e, step.Request)
			},
		})
	}

	divergences := scenario.Replay(ctx)
	for _, d := range divergences {
		fmt.Fprintf(out, "DIVERGED step %d (%s)\n", d.Index, d.Label)
	}
	fmt.Fprintf(out, "%d step(s) replayed, %d divergence(s)\n", len(steps), len(divergences))
	logger.Debug("replay complete", "steps", len(steps), "divergences", len(divergences))

	if len(divergences) > 0 {
		return fmt.Errorf("%d divergence(s) found", len(divergences))
	}
	return nil
}
