package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/cliconfig"
	"github.com/aurelia-tools/aurelia-ls/internal/log"
)

var globalUsage = `aurelia-ls is a language service and AOT semantic authority for
Aurelia-style view/view-model components.

Common actions:

  aurelia-ls check <project>   run discovery and compile every reachable template
  aurelia-ls serve <project>   run the workspace engine over stdio
  aurelia-ls cache clear       remove the third-party-package analysis cache
  aurelia-ls version           print build metadata

Environment:
  AURELIA_PROJECT   set the default project root (overridden by --project)
  AURELIA_DEBUG     enable debug logging without passing --debug
`

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	settings := cliconfig.New()

	cmd := &cobra.Command{
		Use:           "aurelia-ls",
		Short:         "Language service and AOT compiler for Aurelia components",
		Long:          globalUsage,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		return settings.Init(flags)
	}

	logger := func() log.Logger {
		return log.NewReadableTextLogger(errOut, settings.Debug)
	}

	cmd.AddCommand(
		newCheckCmd(settings, out, logger),
		newServeCmd(settings, out, errOut, logger),
		newCacheCmd(settings, out),
		newVersionCmd(out),
		newExplainCmd(out),
		newReplayCmd(settings, out, logger),
	)
	return cmd
}
