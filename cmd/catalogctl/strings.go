package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/catalogkit/stringtable"
)

func init() {
	rootCmd.AddCommand(newStringsCmd())
}

func newStringsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings",
		Short: "Export and apply string table replacements",
	}
	cmd.AddCommand(newStringsExportCmd(), newStringsApplyCmd())
	return cmd
}

func newStringsExportCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "export <table.json> <mapping.json>",
		Short: "Write a replacement mapping for a string table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringsExport(args[0], args[1], mode)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "id", "Mapping keys: id or value")
	return cmd
}

func newStringsApplyCmd() *cobra.Command {
	var (
		mode   string
		strict bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "apply <table.json> <mapping.json>",
		Short: "Replace string table values from a mapping",
		Long: `The apply command replaces the values of a string table from a JSON
object mapping entry ids (or current values, with --mode value) to new text.
The table is only rewritten when a value changed.

Example:
  catalogctl strings apply UI_en.json fr.json
  catalogctl strings apply UI_en.json fr.json --strict -o UI_fr.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringsApply(args[0], args[1], mode, strict, output)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "id", "Mapping keys: id or value")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when an entry has no replacement")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the table here instead of in place")
	return cmd
}

func runStringsExport(tablePath, mappingPath, mode string) error {
	m, err := stringtable.ParseMode(mode)
	if err != nil {
		return err
	}
	t, err := stringtable.LoadTable(tablePath)
	if err != nil {
		return err
	}
	if err := stringtable.SaveMapping(mappingPath, stringtable.Export(t, m)); err != nil {
		return err
	}
	printInfo("%s %d entries to %s\n", okColor.Sprint("exported"), len(t.Entries), mappingPath)
	return nil
}

func runStringsApply(tablePath, mappingPath, mode string, strict bool, output string) error {
	m, err := stringtable.ParseMode(mode)
	if err != nil {
		return err
	}
	t, err := stringtable.LoadTable(tablePath)
	if err != nil {
		return err
	}
	repl, err := stringtable.LoadMapping(mappingPath)
	if err != nil {
		return err
	}
	changed, err := stringtable.Apply(t, repl, stringtable.ApplyOptions{Mode: m, Strict: strict})
	if err != nil {
		return err
	}
	if output == "" {
		output = tablePath
	}
	if !changed {
		printInfo("%s %s\n", skipColor.Sprint("unchanged"), tablePath)
		return nil
	}
	if err := stringtable.SaveTable(output, t); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	printInfo("%s %s\n", okColor.Sprint("updated"), output)
	return nil
}
