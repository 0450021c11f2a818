package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLookupCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <file> <testCase> [method]",
		Short: "Print file:line:col of a test case or one of its methods",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), global.Verbose)

			structure, err := parseFile(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}

			testCase, method := args[1], ""
			if len(args) == 3 {
				method = args[2]
			}

			anchor, ok := structure.Lookup(testCase, method)
			if !ok {
				target := testCase
				if method != "" {
					target += "." + method
				}
				return fmt.Errorf("%s: %w", target, errNotFound)
			}

			loc := anchor.Location
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d\n", loc.File, loc.StartLine, loc.StartCol+1)
			return nil
		},
	}
}
