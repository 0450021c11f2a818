package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specvital/jstd/pkg/parser/strategies/shared/jstd"
)

var (
	fileColor      = color.New(color.Bold)
	caseColor      = color.New(color.FgCyan, color.Bold)
	methodColor    = color.New(color.FgGreen)
	prototypeColor = color.New(color.FgYellow)
	dimColor       = color.New(color.FgHiBlack)
)

func newOutlineCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the test cases and methods of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if global.NoColor {
				color.NoColor = true
			}
			logger := newLogger(cmd.ErrOrStderr(), global.Verbose)

			structure, err := parseFile(cmd.Context(), args[0], logger)
			if err != nil {
				return err
			}

			printOutline(cmd.OutOrStdout(), structure)
			return nil
		},
	}
}

func printOutline(w io.Writer, f *jstd.TestFileStructure) {
	fileColor.Fprintln(w, f.Path)

	if f.TestCaseCount() == 0 {
		dimColor.Fprintln(w, "  no test cases")
		return
	}

	for _, tc := range f.TestCases() {
		caseColor.Fprintf(w, "  %s", tc.Name)
		dimColor.Fprintf(w, " %s :%d\n", tc.Factory, tc.CallSite.Location.StartLine)

		for _, t := range tc.Tests() {
			methodColor.Fprintf(w, "    %s", t.Name)
			if t.IsPrototypeForm() {
				prototypeColor.Fprint(w, " [prototype]")
			}
			if !t.HasBody() {
				dimColor.Fprint(w, " (no body)")
			}
			dimColor.Fprintf(w, " :%d\n", t.NameAnchor.Location.StartLine)
		}
	}

	fmt.Fprintf(w, "%d test cases, %d tests\n", f.TestCaseCount(), countTests(f))
}

func countTests(f *jstd.TestFileStructure) int {
	n := 0
	for _, tc := range f.TestCases() {
		n += tc.TestCount()
	}
	return n
}
