package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aurelia-tools/aurelia-ls/internal/cliconfig"
)

func newCacheCmd(settings *cliconfig.Settings, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the third-party-package analysis cache",
	}
	cmd.AddCommand(newCacheClearCmd(settings, out), newCacheStatCmd(settings, out))
	return cmd
}

func cacheDir(settings *cliconfig.Settings) string {
	if settings.CacheDir != "" {
		return settings.CacheDir
	}
	return filepath.Join(settings.ProjectRoot, ".aurelia-cache")
}

func newCacheClearCmd(settings *cliconfig.Settings, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the whole .aurelia-cache/npm-analysis tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(cacheDir(settings), "npm-analysis")
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(out, "removed %s\n", dir)
			return nil
		},
	}
}

func newCacheStatCmd(settings *cliconfig.Settings, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Report entry counts in the third-party-package analysis cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(cacheDir(settings), "npm-analysis")
			var entries, schemaVersions int
			versions, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintf(out, "%s: empty\n", dir)
					return nil
				}
				return err
			}
			schemaVersions = len(versions)
			for _, v := range versions {
				if !v.IsDir() {
					continue
				}
				fingerprints, err := os.ReadDir(filepath.Join(dir, v.Name()))
				if err != nil {
					continue
				}
				for _, fp := range fingerprints {
					if !fp.IsDir() {
						continue
					}
					pkgs, err := os.ReadDir(filepath.Join(dir, v.Name(), fp.Name()))
					if err != nil {
						continue
					}
					for _, p := range pkgs {
						if filepath.Ext(p.Name()) == ".json" {
							entries++
						}
					}
				}
			}
			fmt.Fprintf(out, "%s: %d schema version(s), %d cached package entries\n", dir, schemaVersions, entries)
			return nil
		},
	}
}
