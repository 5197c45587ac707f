// Command aurelia-ls is the CLI surface for the Aurelia semantic
// authority: one-shot diagnostics (`check`), a stdio workspace server
// (`serve`), cache maintenance, and build metadata. Grounded on the
// teacher's cmd/helm: a cobra root command constructed once in main,
// with each subcommand in its own file sharing package-level wiring.
package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
