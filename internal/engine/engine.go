package engine

import (
	"context"
	"log/slog"

	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/journal"
	"github.com/foldq/foldq/internal/listener"
	"github.com/foldq/foldq/internal/state"
	"github.com/foldq/foldq/internal/value"
)

// Synthetic event names, re-exported for hosts wiring subscriptions.
const (
	EventChange = listener.EventChange
	EventCommit = listener.EventCommit
	EventReady  = listener.EventReady
)

// Journal is the sink for processed commands. Satisfied by
// *journal.Journal; nil disables journaling.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Engine owns the state store, the listener registry, and the retained
// visible queue. All mutation of any of the three happens inside Append
// (or the construction-time scan), on the caller's goroutine.
//
// INVARIANTS:
//   - retained entries are ordered by ascending original index
//   - the index counter never repeats or goes backwards
//   - the store and registry are never reachable from outside; reads
//     hand out deep copies only
type Engine struct {
	store    *state.Store
	registry *listener.Registry
	retained []retainedEntry
	next     int
	journal  Journal
	ids      IDGenerator
	logger   *slog.Logger
}

// Option configures an Engine at construction.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	journal Journal
	ids     IDGenerator
	initial []any
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithJournal attaches a command journal. Every processed command is
// recorded exactly once; journal failures are logged, never propagated.
func WithJournal(j Journal) Option {
	return func(s *settings) { s.journal = j }
}

// WithIDGenerator overrides listener ID generation. Production uses
// UUIDs; tests use testutil.FixedIDGenerator for stable output.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) { s.ids = g }
}

// WithInitialQueue supplies entries that were queued before the engine
// existed. They are processed once, in order, through the same state
// machine as live appends, so listener registrations among them observe
// correct replay windows.
func WithInitialQueue(entries []any) Option {
	return func(s *settings) { s.initial = append(s.initial, entries...) }
}

// New constructs an engine, processes any pre-existing queue entries,
// and announces readiness. The ready event is itself a retained event
// command, so all-scope and past-scope listeners registered later can
// observe that startup completed.
func New(opts ...Option) *Engine {
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.ids == nil {
		cfg.ids = NewUUIDGenerator()
	}

	e := &Engine{
		store:    state.New(),
		registry: listener.NewRegistry(cfg.logger),
		journal:  cfg.journal,
		ids:      cfg.ids,
		logger:   cfg.logger,
	}

	if len(cfg.initial) > 0 {
		e.logger.Debug("processing pre-existing queue entries", "count", len(cfg.initial))
		e.Append(cfg.initial...)
	}
	e.Append(map[string]any{"event": EventReady})

	return e
}

// Append classifies and fully dispatches each entry, in order, before
// returning. Safe to call re-entrantly from handlers; must always be
// called from the goroutine that owns the engine.
func (e *Engine) Append(entries ...any) {
	for _, payload := range entries {
		idx := e.next
		e.next++
		cmd := command.Classify(payload, idx)
		e.process(cmd)
	}
}

// Subscribe registers a listener for event with the given options,
// routed through the same classify-dispatch path as a raw append.
func (e *Engine) Subscribe(event string, h command.Handler, opts SubscribeOptions) {
	payload := map[string]any{
		"on":      event,
		"handler": h,
	}
	if opts.Path != "" {
		payload["path"] = opts.Path
	}
	if opts.Scope != "" {
		payload["scope"] = string(opts.Scope)
	}
	e.Append(payload)
}

// SubscribeOptions carries the optional parts of a subscription.
type SubscribeOptions struct {
	// Path restricts the listener to data touching this subtree.
	Path string
	// Scope is the replay policy; empty means ScopeAll.
	Scope command.Scope
}

// Unsubscribe removes listeners for event. A nil handler removes every
// listener for the event regardless of handler.
func (e *Engine) Unsubscribe(event string, h command.Handler) {
	payload := map[string]any{"off": event}
	if h != nil {
		payload["handler"] = h
	}
	e.Append(payload)
}

// GetState returns a deep copy of the current state, or of the value at
// the given path. Path segments may be passed individually or as one
// dot-delimited string; a missing path yields nil. Mutating the result
// never affects subsequent reads.
func (e *Engine) GetState(path ...string) any {
	v, ok := e.store.Get(value.JoinPath(path))
	if !ok {
		return nil
	}
	return v
}

// Query resolves a gjson path expression against the current state.
// Used by tooling that wants richer addressing than GetState.
func (e *Engine) Query(path string) (any, bool) {
	return e.store.Query(path)
}

// Snapshot returns deep copies of the retained visible-queue payloads,
// in the order survivors were appended.
func (e *Engine) Snapshot() []any {
	out := make([]any, len(e.retained))
	for i, entry := range e.retained {
		out[i] = value.Copy(entry.cmd.Payload)
	}
	return out
}

// Listeners returns the number of registered listeners. Introspection
// and tests only.
func (e *Engine) Listeners() int {
	return e.registry.Len()
}

// retainedEntry is one surviving Data/Event command, keyed by its
// original index. Replay windows are computed from index, never from
// position in the slice.
type retainedEntry struct {
	index int
	cmd   command.Command
}
