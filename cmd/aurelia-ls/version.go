package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/buildinfo"
)

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata and the command envelope's schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			fmt.Fprintf(out, "aurelia-ls %s (schemaVersion %d)\n", info.Version, info.SchemaVersion)
			if info.GitCommit != "" {
				fmt.Fprintf(out, "  commit: %s (%s)\n", info.GitCommit, info.GitTreeState)
			}
			if info.GoVersion != "" {
				fmt.Fprintf(out, "  go: %s\n", info.GoVersion)
			}
			return nil
		},
	}
}
