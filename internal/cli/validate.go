package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/foldq/foldq/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationResult reports one scenario file's structural check.
type ValidationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Check every scenario file in a directory for structural problems:
missing names, ambiguous steps, malformed assertions.

Exit codes:
  0 - all files valid
  1 - one or more files invalid
  2 - command error

Examples:
  foldq validate ./scenarios
  foldq validate ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, out io.Writer) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  out,
		Verbose: opts.Verbose,
	}

	paths, err := findScenarioFiles(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan scenarios", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", dir))
	}

	var results []ValidationResult
	invalid := 0
	for _, path := range paths {
		r := ValidationResult{File: path, Valid: true}
		if _, err := harness.Load(path); err != nil {
			r.Valid = false
			r.Error = err.Error()
			invalid++
		}
		results = append(results, r)
	}

	if opts.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(out, "ok    %s\n", r.File)
			} else {
				fmt.Fprintf(out, "error %s: %s\n", r.File, r.Error)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario files invalid", invalid, len(paths)))
	}
	return nil
}
