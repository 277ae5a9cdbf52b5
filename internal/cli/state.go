package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/foldq/foldq/internal/engine"
	"github.com/foldq/foldq/internal/value"
)

// StateOptions holds flags for the state command.
type StateOptions struct {
	*RootOptions
	Path string
}

// NewStateCommand creates the state command.
func NewStateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "state <queue-file>",
		Short: "Fold a queue file into its final state",
		Long: `Fold a YAML queue file into the state it produces.

The file holds a list of queue entries (data merges and events). Each
entry is appended in order against a fresh store and the resulting
state is printed as canonical JSON.

Examples:
  foldq state ./queue.yaml
  foldq state ./queue.yaml --path cart.items
  foldq state ./queue.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "gjson path to print instead of the whole state")

	return cmd
}

func runState(opts *StateOptions, path string, out, errOut io.Writer) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}

	entries, err := loadQueueFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load queue file", err)
	}
	formatter.VerboseLog("loaded %d queue entries from %s", len(entries), path)

	eng := engine.New(
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithInitialQueue(entries),
	)

	if opts.Path != "" {
		v, ok := eng.Query(opts.Path)
		if !ok {
			return NewExitError(ExitFailure, fmt.Sprintf("path %q not found in final state", opts.Path))
		}
		return printCanonical(formatter, v)
	}
	return printCanonical(formatter, eng.GetState())
}

func loadQueueFile(path string) ([]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []map[string]any
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out, nil
}

func printCanonical(formatter *OutputFormatter, v any) error {
	raw, err := value.MarshalCanonical(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "state is not serializable", err)
	}
	if formatter.Format == "json" {
		fmt.Fprintln(formatter.Writer, string(raw))
		return nil
	}
	return formatter.Success(string(raw))
}
