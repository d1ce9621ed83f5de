package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/catalogkit/catalog"
)

type patchFlags struct {
	dryRun       bool
	strict       bool
	backupSuffix string
	workers      int
}

func init() {
	rootCmd.AddCommand(newPatchCmd())
}

func newPatchCmd() *cobra.Command {
	var f patchFlags
	cmd := &cobra.Command{
		Use:   "patch <catalog>...",
		Short: "Zero the bundle checksums of one or more catalogs",
		Long: `The patch command zeroes every AssetBundleProvider checksum in the
given catalogs. Catalogs that need no change are left untouched and get no
backup.

Example:
  catalogctl patch catalog.bin
  catalogctl patch catalog.json catalog.bundle --workers 2
  catalogctl patch catalog.bin --dry-run --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd.Context(), args, f)
		},
	}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report changes without writing")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Compare provider names by value when offsets differ")
	cmd.Flags().StringVar(&f.backupSuffix, "backup-suffix", "", "Backup file suffix (default from config)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Catalogs patched concurrently (default from config)")
	return cmd
}

func runPatch(ctx context.Context, paths []string, f patchFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := cfg.CatalogOptions(logger)
	if err != nil {
		return err
	}
	opts.DryRun = f.dryRun
	opts.StrictProviderMatch = opts.StrictProviderMatch || f.strict
	if f.backupSuffix != "" {
		opts.BackupSuffix = f.backupSuffix
	}
	workers := f.workers
	if workers == 0 {
		workers = cfg.Patch.Workers
	}

	results, err := catalog.New(opts).PatchAll(ctx, paths, workers)
	if jsonOut {
		if jerr := printJSON(results); jerr != nil {
			return errors.Join(err, jerr)
		}
		return err
	}
	for i, res := range results {
		printResult(paths[i], res, f.dryRun)
	}
	return err
}

func printResult(path string, res *catalog.Result, dryRun bool) {
	switch {
	case res == nil:
		printInfo("%s %s\n", failColor.Sprint("failed"), path)
	case res.Modified:
		printInfo("%s %s (%s, %d checksums)\n", okColor.Sprint("patched"), path, res.Source, res.Count())
		if res.Backup != "" {
			printVerbose("  backup: %s\n", res.Backup)
		}
	case dryRun && res.Count() > 0:
		printInfo("%s %s (%s, %d checksums)\n", skipColor.Sprint("would patch"), path, res.Source, res.Count())
	default:
		printInfo("%s %s (%s)\n", skipColor.Sprint("unchanged"), path, res.Source)
	}
}
