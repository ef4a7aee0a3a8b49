package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pdiddy/darus-fetch/internal/catalog"
	"github.com/pdiddy/darus-fetch/internal/config"
	"github.com/pdiddy/darus-fetch/internal/dataverse"
	"github.com/pdiddy/darus-fetch/internal/fetch"
)

func init() {
	rootCmd.Flags().StringArray("doi", nil, "dataset identifier(s) to download instead of the configured datasets")
}

// identifiers returns the datasets to fetch. When --doi is given its values
// and any positional arguments replace the configured list, so both
// "--doi a b" and "--doi a --doi b" work. Values are taken as given.
func identifiers(cmd *cobra.Command, args []string, configured []string) []string {
	if !cmd.Flags().Changed("doi") && len(args) == 0 {
		return configured
	}
	ids, _ := cmd.Flags().GetStringArray("doi")
	return append(ids, args...)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fs := afero.NewOsFs()

	base, err := baseDir(cmd)
	if err != nil {
		return err
	}

	created, err := config.CreateTemplateIfNeeded(fs, base, out)
	if err != nil {
		return err
	}
	if created {
		return nil
	}

	cfg, cfgPath, err := config.Load(fs, base)
	if err != nil {
		return err
	}
	slog.Debug("Using config file", "path", cfgPath)

	apiKey, err := config.LoadAPIKey(fs, base, out)
	if err != nil {
		return err
	}

	ids := identifiers(cmd, args, cfg.Datasets)
	if len(ids) == 0 {
		fmt.Fprintln(out, "No dataset identifiers given.")
		return nil
	}

	native, access, err := dataverse.NewSession(ctx, cfg.DataverseURL, apiKey, cfg.Options)
	if err != nil {
		return err
	}

	root, err := dataRoot(cmd, base)
	if err != nil {
		return err
	}

	f := &fetch.Fetcher{
		Metadata:       native,
		Files:          access,
		Fs:             fs,
		DataRoot:       root,
		Policy:         cfg.Options.DownloadExistingData,
		Confirm:        fetch.ConsoleConfirm(os.Stdin, out),
		UnicodeFolders: cfg.Options.UnicodeFolders,
		Authenticated:  native.Authenticated(),
		Out:            out,
	}

	// The catalog is created on the first completed download; until then the
	// data root may not exist (untitled datasets are stored in it directly).
	if cfg.Options.CatalogEnabled() {
		store := &catalog.Deferred{
			DataRoot:      root,
			DataverseURL:  cfg.DataverseURL,
			Authenticated: native.Authenticated(),
		}
		defer store.Close()
		slog.Debug("Recording downloads", "catalog", catalog.Path(root))
		f.Catalog = store
	}

	_, err = f.Run(ctx, ids)
	return err
}
