package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshuapare/catalogkit/internal/config"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string

	cfg    = &config.Config{}
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Disable bundle checksum checks in Addressables catalogs",
	Long: `catalogctl patches Addressables content catalogs so the runtime stops
verifying asset bundle checksums. Binary catalogs, JSON catalogs and UnityFS
bundles wrapping a JSON catalog are detected automatically. A backup is
written next to the catalog before the first change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default catalogkit.yaml)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func setup(logOut io.Writer) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = c
	if noColor {
		color.NoColor = true
	}
	logger = newLogger(logOut)
	return nil
}

func newLogger(out io.Writer) zerolog.Logger {
	level := cfg.LogLevel()
	switch {
	case quiet:
		level = zerolog.ErrorLevel
	case verbose:
		level = zerolog.DebugLevel
	}
	if !jsonOut {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: noColor || color.NoColor}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	skipColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)
