package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/specvital/jstd/pkg/parser/strategies/shared/jstd"

	_ "github.com/specvital/jstd/pkg/parser/strategies/all"
)

type globalFlags struct {
	Verbose bool
	NoColor bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "jstd",
		Short: "JsTestDriver test inventory",
		Long: `Inspect JsTestDriver test files: TestCase / AsyncTestCase declarations,
their inline methods and the methods later assigned to their prototype.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log recognition decisions to stderr")
	rootCmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newScanCmd(&flags),
		newOutlineCmd(&flags),
		newLocateCmd(&flags),
		newLookupCmd(&flags),
	)
	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseFile reads one JavaScript file and builds its test structure.
func parseFile(ctx context.Context, filename string, logger *slog.Logger) (*jstd.TestFileStructure, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return jstd.Parse(ctx, source, filename, jstd.WithLogger(logger))
}
