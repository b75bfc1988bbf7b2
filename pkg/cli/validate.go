package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/fakereq/pkg/cli/internal/output"
	"github.com/getmockd/fakereq/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|glob>...",
	Short: "Check fixture files for invalid expectations",
	Long: `Load every fixture file and report all invalid expectations: unknown
methods, malformed URI patterns, bad regular expressions, JSON schemas or
expressions, and conflicting response fields.

Examples:
  fakereq validate fixtures/users.yaml
  fakereq validate 'fixtures/**/*.yaml'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args)
	},
}

type validateResult struct {
	File         string   `json:"file"`
	Expectations int      `json:"expectations"`
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors,omitempty"`
}

func runValidate(out io.Writer, paths []string) error {
	fixtures, err := config.LoadPaths(paths...)
	if err != nil {
		return err
	}
	if len(fixtures) == 0 {
		return ErrNoFixtures
	}

	results := make([]validateResult, 0, len(fixtures))
	invalid := 0
	for _, f := range fixtures {
		r := validateResult{File: f.Source, Expectations: len(f.Expectations), Valid: true}
		if err := f.Validate(); err != nil {
			r.Valid = false
			r.Errors = errorLines(err)
			invalid++
		}
		results = append(results, r)
	}

	err = printResult(out, results, func() {
		tw := output.Table(out)
		fmt.Fprintln(tw, "FILE\tEXPECTATIONS\tSTATUS")
		for _, r := range results {
			status := "ok"
			if !r.Valid {
				status = "invalid"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", r.File, r.Expectations, status)
		}
		_ = tw.Flush()

		for _, r := range results {
			for _, line := range r.Errors {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
	})
	if err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidFixtures, invalid, len(fixtures))
	}
	return nil
}

// errorLines flattens a joined error into one message per line.
func errorLines(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var lines []string
		for _, e := range joined.Unwrap() {
			lines = append(lines, errorLines(e)...)
		}
		return lines
	}
	return []string{err.Error()}
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
