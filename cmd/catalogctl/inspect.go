package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/catalogkit/catalog"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "inspect <catalog>",
		Short: "List the checksum fields patch would zero",
		Long: `The inspect command walks a catalog without writing and lists every
checksum that patch would zero: word offsets for binary catalogs, extra data
slots for JSON catalogs and bundles.

Example:
  catalogctl inspect catalog.bin
  catalogctl inspect catalog.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Compare provider names by value when offsets differ")
	return cmd
}

func runInspect(ctx context.Context, path string, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := cfg.CatalogOptions(logger)
	if err != nil {
		return err
	}
	opts.DryRun = true
	opts.StrictProviderMatch = opts.StrictProviderMatch || strict

	res, err := catalog.New(opts).PatchFile(ctx, path)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nCatalog Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Source: %s\n", res.Source)
	if res.Source == catalog.SourceRawBinaryGraph {
		printInfo("  Version: %d\n", res.Version)
	}
	printInfo("  Checksums to zero: %d\n", res.Count())
	for _, f := range res.Fields {
		printInfo("    0x%08x  location 0x%x  value %d\n", f.Offset, f.Location, f.Value)
	}
	for _, e := range res.Entries {
		printInfo("    entry %d  slot 0x%x  crc %s  %d -> %d bytes\n", e.Entry, e.DataIndex, e.OldValue, e.OldLen, e.NewLen)
	}
	return nil
}
