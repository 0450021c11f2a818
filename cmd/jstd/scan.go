package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/specvital/jstd/pkg/domain"
	"github.com/specvital/jstd/pkg/parser"
)

type scanFlags struct {
	Patterns []string
	Exclude  []string
	Workers  int
	Config   string
	Timeout  time.Duration
}

type scanOutput struct {
	RootPath string            `json:"rootPath"`
	Configs  []configOutput    `json:"configs,omitempty"`
	Files    []domain.TestFile `json:"files"`
	Errors   []string          `json:"errors,omitempty"`
	Stats    scanStatsOutput   `json:"stats"`
}

type configOutput struct {
	Path    string   `json:"path"`
	BaseDir string   `json:"baseDir"`
	Server  string   `json:"server,omitempty"`
	Load    []string `json:"load,omitempty"`
	Test    []string `json:"test,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Serve   []string `json:"serve,omitempty"`
	Timeout int      `json:"timeout,omitempty"`
}

type scanStatsOutput struct {
	FilesScanned int    `json:"filesScanned"`
	FilesMatched int    `json:"filesMatched"`
	FilesFailed  int    `json:"filesFailed"`
	FilesSkipped int    `json:"filesSkipped"`
	ConfigsFound int    `json:"configsFound"`
	TestCases    int    `json:"testCases"`
	Tests        int    `json:"tests"`
	Duration     string `json:"duration"`
}

func newScanCmd(global *globalFlags) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory and print the test inventory as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), global.Verbose)

			result, err := parser.ScanDir(cmd.Context(), args[0],
				parser.WithPatterns(flags.Patterns),
				parser.WithExcludePatterns(flags.Exclude),
				parser.WithWorkers(flags.Workers),
				parser.WithConfigPath(flags.Config),
				parser.WithTimeout(flags.Timeout),
				parser.WithLogger(logger),
			)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			out := scanOutput{
				RootPath: result.Inventory.RootPath,
				Files:    result.Inventory.Files,
				Stats: scanStatsOutput{
					FilesScanned: result.Stats.FilesScanned,
					FilesMatched: result.Stats.FilesMatched,
					FilesFailed:  result.Stats.FilesFailed,
					FilesSkipped: result.Stats.FilesSkipped,
					ConfigsFound: result.Stats.ConfigsFound,
					TestCases:    result.Inventory.CountSuites(),
					Tests:        result.Inventory.CountTests(),
					Duration:     result.Stats.Duration.Round(time.Millisecond).String(),
				},
			}
			for _, scope := range result.Configs {
				out.Configs = append(out.Configs, configOutput{
					Path:    scope.ConfigPath,
					BaseDir: scope.BaseDir,
					Server:  scope.Server,
					Load:    scope.Load,
					Test:    scope.Test,
					Exclude: scope.Exclude,
					Serve:   scope.Serve,
					Timeout: scope.Timeout,
				})
			}
			for _, scanErr := range result.Errors {
				out.Errors = append(out.Errors, scanErr.Error())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.Patterns, "pattern", "p", nil, "Glob patterns candidate files must match (e.g. 'test/**/*Test.js')")
	cmd.Flags().StringSliceVarP(&flags.Exclude, "exclude", "e", nil, "Additional directory names to skip")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", parser.DefaultWorkers, "Number of parallel parsers (0 = GOMAXPROCS)")
	cmd.Flags().StringVarP(&flags.Config, "config", "c", "", "jsTestDriver.conf applied to every file, relative to <dir>")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", parser.DefaultTimeout, "Maximum scan duration")

	return cmd
}
