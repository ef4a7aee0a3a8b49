package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/darus-fetch/internal/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets recorded in the download catalog",
	Long: `List prints the datasets darus-fetch has downloaded into the data
directory, newest first, as a table, JSON or YAML.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("output", "o", catalog.FormatTable, "output format: table, json or yaml")
	listCmd.Flags().Bool("files", false, "include the file list of each dataset (json and yaml only)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	withFiles, _ := cmd.Flags().GetBool("files")
	out := cmd.OutOrStdout()

	base, err := baseDir(cmd)
	if err != nil {
		return err
	}
	root, err := dataRoot(cmd, base)
	if err != nil {
		return err
	}

	if _, err := os.Stat(catalog.Path(root)); os.IsNotExist(err) {
		return catalog.Write(out, nil, format)
	}

	store, err := catalog.Open(root)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), withFiles)
	if err != nil {
		return fmt.Errorf("listing catalog: %w", err)
	}
	return catalog.Write(out, entries, format)
}
