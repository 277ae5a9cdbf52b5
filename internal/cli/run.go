package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/engine"
	"github.com/foldq/foldq/internal/journal"
	"github.com/foldq/foldq/internal/manifest"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// RunSummary is printed after a manifest run.
type RunSummary struct {
	Store         string         `json:"store"`
	Seeded        int            `json:"seeded"`
	Subscriptions int            `json:"subscriptions"`
	Retained      int            `json:"retained"`
	Listeners     int            `json:"listeners"`
	State         map[string]any `json:"state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest-dir>",
		Short: "Bootstrap a store from a CUE manifest",
		Long: `Bootstrap a store from a CUE manifest directory.

The manifest names the store, seeds the queue, and declares
subscriptions. Seeded entries are folded in order, manifest
subscriptions are installed with a logging handler, and the resulting
state is printed.

With --db, every processed command is recorded to a SQLite journal
that foldq trace can inspect later.

Examples:
  foldq run ./manifest
  foldq run ./manifest --db ./foldq.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal database")

	return cmd
}

func runManifest(opts *RunOptions, dir string, out io.Writer) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: os.Stderr,
		Verbose:   opts.Verbose,
	}

	logger.Info("compiling manifest", "dir", dir)
	m, err := manifest.Load(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile manifest", err)
	}
	logger.Info("manifest compiled",
		"store", m.Name,
		"seed", len(m.Seed),
		"subscriptions", len(m.Subscriptions),
	)

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
	}
	if opts.Database != "" {
		logger.Info("opening journal", "path", opts.Database)
		j, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithJournal(j))
	}
	engineOpts = append(engineOpts, engine.WithInitialQueue(m.Queue()))

	eng := engine.New(engineOpts...)

	for _, sub := range m.Subscriptions {
		eng.Subscribe(sub.Event, func(n command.Notification) {
			logger.Info("notification",
				"store", m.Name,
				"subscription", sub.Event,
				"event", n.Event,
			)
		}, engine.SubscribeOptions{Path: sub.Path, Scope: sub.Scope})
	}

	summary := RunSummary{
		Store:         m.Name,
		Seeded:        len(m.Seed),
		Subscriptions: len(m.Subscriptions),
		Retained:      len(eng.Snapshot()),
		Listeners:     eng.Listeners(),
		State:         eng.GetState().(map[string]any),
	}

	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	return printCanonical(formatter, summary.State)
}
