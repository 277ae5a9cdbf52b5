package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldq/foldq/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Kind     string
}

// TraceEntry is one journaled command in the trace output.
type TraceEntry struct {
	Seq      int    `json:"seq"`
	Kind     string `json:"kind"`
	Event    string `json:"event,omitempty"`
	Payload  string `json:"payload"`
	Retained bool   `json:"retained"`
}

// TraceStats summarizes a journal.
type TraceStats struct {
	Total    int `json:"total"`
	Retained int `json:"retained"`
	Spliced  int `json:"spliced"`
}

// TraceOutput is the full trace command output.
type TraceOutput struct {
	Entries []TraceEntry `json:"entries"`
	Stats   TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect a command journal",
		Long: `Inspect the SQLite journal written by foldq run --db.

Every command the dispatcher processed is listed in sequence order,
including spliced entries (listener operations, functions, invalid
payloads) that no longer appear in the retained queue.

Examples:
  foldq trace --db ./foldq.db
  foldq trace --db ./foldq.db --kind data
  foldq trace --db ./foldq.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal database (required)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show commands of this kind")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, out io.Writer) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	entries, err := j.Read(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	output := TraceOutput{}
	for _, e := range entries {
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		output.Entries = append(output.Entries, TraceEntry{
			Seq:      e.Seq,
			Kind:     e.Kind,
			Event:    e.Event,
			Payload:  e.Payload,
			Retained: e.Retained,
		})
		output.Stats.Total++
		if e.Retained {
			output.Stats.Retained++
		} else {
			output.Stats.Spliced++
		}
	}

	if opts.Format == "json" {
		return formatter.Success(output)
	}

	for _, e := range output.Entries {
		marker := " "
		if e.Retained {
			marker = "*"
		}
		if e.Event != "" {
			fmt.Fprintf(out, "%s %4d  %-12s %-16s %s\n", marker, e.Seq, e.Kind, e.Event, e.Payload)
		} else {
			fmt.Fprintf(out, "%s %4d  %-12s %s\n", marker, e.Seq, e.Kind, e.Payload)
		}
	}
	fmt.Fprintf(out, "\n%d commands (%d retained, %d spliced)\n",
		output.Stats.Total, output.Stats.Retained, output.Stats.Spliced)
	return nil
}
