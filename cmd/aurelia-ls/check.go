package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/cliconfig"
	"github.com/aurelia-tools/aurelia-ls/internal/discovery"
	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/log"
	"github.com/aurelia-tools/aurelia-ls/internal/workspace"
)

func newCheckCmd(settings *cliconfig.Settings, out io.Writer, logger func() log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [project]",
		Short: "Run discovery and compile every reachable template, reporting diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := settings.ProjectRoot
			if len(args) == 1 {
				root = args[0]
			}
			return runCheck(cmd.Context(), root, settings, out, logger())
		},
	}
	return cmd
}

func runCheck(ctx context.Context, root string, settings *cliconfig.Settings, out io.Writer, logger log.Logger) error {
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

	templates := templateFiles(project)
	counts := map[string]int{}
	var groups []string
	perFile := map[string][]string{}

	for _, f := range templates {
		uri := f.URI
		e.OpenDoc(uri, f.Text, 1)
		env := e.Check(ctx, uri)
		result, ok := env.Result.(workspace.CheckResult)
		if !ok {
			continue
		}
		if len(result.Diagnostics) == 0 {
			continue
		}
		groups = append(groups, f.Path)
		perFile[f.Path] = result.Diagnostics
		for _, d := range result.Diagnostics {
			sev := strings.SplitN(d, " ", 2)[0]
			counts[sev]++
		}
	}
	sort.Strings(groups)

	for _, path := range groups {
		fmt.Fprintf(out, "%s:\n", path)
		for _, d := range perFile[path] {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	fmt.Fprintf(out, "\n%d file(s) checked, %d error(s), %d warning(s), %d info\n",
		len(templates), counts["error"], counts["warning"], counts["info"])

	logger.Debug("check complete", "files", len(templates), "errors", counts["error"])

	if counts["error"] > 0 {
		return fmt.Errorf("%d error(s) found", counts["error"])
	}
	return nil
}
