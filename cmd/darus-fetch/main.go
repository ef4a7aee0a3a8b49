// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the darus-fetch CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/darus-fetch/internal/config"
	"github.com/pdiddy/darus-fetch/internal/log"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd downloads datasets; the subcommands inspect what was downloaded.
var rootCmd = &cobra.Command{
	Use:   "darus-fetch [--doi <id> [<id> ...]]",
	Short: "Download datasets from a Dataverse installation such as DaRUS",
	Long: `darus-fetch downloads Dataverse datasets into folders named after their
titles. Dataset identifiers come from --doi or, when the flag is absent, from
the "datasets" list in darus_config.json.

darus_config.json is searched next to the executable and in its two parent
directories. On first run a template is written and the program exits so it
can be edited. Private datasets need an API token in a .darus_apikey file
(same search directories) or in $DARUS_API_KEY.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log.PrepareLogging(os.Stderr, verbose)
	},
	RunE: runFetch,
}

func init() {
	rootCmd.PersistentFlags().String("base-dir", "", "directory searched first for darus_config.json and .darus_apikey (default: directory of the executable)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory receiving dataset folders (default: <base-dir>/../data)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// baseDir returns --base-dir or the executable's directory.
func baseDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("base-dir")
	if dir != "" {
		return filepath.Abs(dir)
	}
	return config.ExecutableDir()
}

// dataRoot returns --data-dir or <base>/../data.
func dataRoot(cmd *cobra.Command, base string) (string, error) {
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir != "" {
		return filepath.Abs(dir)
	}
	return filepath.Clean(filepath.Join(base, "..", "data")), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
