package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specvital/jstd/pkg/parser/strategies/shared/jstd"
)

var errNotFound = errors.New("not found")

func newLocateCmd(global *globalFlags) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "locate <file>",
		Short: "Print the test case, and method, enclosing a byte offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), global.Verbose)

			structure, err := parseFile(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}

			tc, ok := structure.FindEnclosingTestCase(offset)
			if !ok {
				return fmt.Errorf("offset %d: no enclosing test case: %w", offset, errNotFound)
			}

			if t, ok := enclosingTest(tc, offset); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s.%s\n", tc.Name, t.Name)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), tc.Name)
			return nil
		},
	}

	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "Byte offset into the file")
	_ = cmd.MarkFlagRequired("offset")

	return cmd
}

// enclosingTest finds the inline method whose name or body contains offset.
// Prototype methods live outside the factory call and never match.
func enclosingTest(tc *jstd.TestCaseStructure, offset int) (*jstd.TestStructure, bool) {
	for _, t := range tc.Tests() {
		if t.IsPrototypeForm() {
			continue
		}
		if t.NameAnchor.Range().Contains(offset) {
			return t, true
		}
		if t.Body != nil && t.Body.Range().Contains(offset) {
			return t, true
		}
	}
	return nil, false
}
