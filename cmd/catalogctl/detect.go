package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/catalogkit/catalog"
)

func init() {
	rootCmd.AddCommand(newDetectCmd())
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <catalog>...",
		Short: "Report the shape of each catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args)
		},
	}
}

type detection struct {
	Path   string         `json:"path"`
	Source catalog.Source `json:"source"`
	Order  string         `json:"order,omitempty"`
}

func runDetect(paths []string) error {
	out := make([]detection, 0, len(paths))
	for _, path := range paths {
		source, order, err := catalog.DetectFile(path)
		if err != nil {
			return fmt.Errorf("failed to detect %s: %w", path, err)
		}
		d := detection{Path: path, Source: source}
		if order != nil {
			d.Order = order.String()
		}
		out = append(out, d)
	}
	if jsonOut {
		return printJSON(out)
	}
	for _, d := range out {
		if d.Order != "" {
			printInfo("%s: %s (%s)\n", d.Path, d.Source, d.Order)
		} else {
			printInfo("%s: %s\n", d.Path, d.Source)
		}
	}
	return nil
}
