package listener

import (
	"log/slog"

	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/value"
)

// Registry holds registered listeners in registration order.
//
// Order matters: Matching returns listeners in the order they were
// registered, so notification order is deterministic for a given
// registration history.
//
// Not safe for concurrent use on its own; the dispatcher serializes
// access.
type Registry struct {
	listeners []*Listener
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register inserts l unless an identical (event, path, handler) triple
// is already present. Returns false on a duplicate, which is a no-op.
func (r *Registry) Register(l *Listener) bool {
	for _, existing := range r.listeners {
		if existing.matches(l.Event, l.Path, l.Handler) {
			r.logger.Debug("listener already registered",
				"listener_id", existing.ID,
				"event", l.Event,
				"path", l.Path,
			)
			return false
		}
	}

	r.listeners = append(r.listeners, l)
	r.logger.Debug("listener registered",
		"listener_id", l.ID,
		"event", l.Event,
		"path", l.Path,
		"scope", string(l.Scope),
	)
	return true
}

// Unregister removes all listeners for event. When handler is non-nil,
// only listeners with that handler identity are removed. Returns the
// number removed.
func (r *Registry) Unregister(event string, handler command.Handler) int {
	kept := r.listeners[:0]
	removed := 0
	for _, l := range r.listeners {
		if l.Event == event &&
			(handler == nil || command.HandlerPointer(l.Handler) == command.HandlerPointer(handler)) {
			removed++
			r.logger.Debug("listener removed", "listener_id", l.ID, "event", event)
			continue
		}
		kept = append(kept, l)
	}
	// Nil the tail so removed listeners are collectable.
	for i := len(kept); i < len(r.listeners); i++ {
		r.listeners[i] = nil
	}
	r.listeners = kept
	return removed
}

// Matching resolves which registered listeners a command notifies, in
// registration order. changed reports whether the command's data was
// merged into the store; it gates the synthetic change event.
//
// Rules:
//   - change listeners match any command that changed the store
//   - named-event listeners match event commands with the same name
//   - commit listeners match every event command
//   - a listener with a path matches only if the command's data touches
//     that path, an ancestor of it, or a descendant of it
func (r *Registry) Matching(cmd command.Command, changed bool) []*Listener {
	var matched []*Listener
	for _, l := range r.listeners {
		if !eventApplies(l.Event, cmd, changed) {
			continue
		}
		if l.Path != "" && !TouchesPath(cmd.Data, value.SplitPath(l.Path)) {
			continue
		}
		matched = append(matched, l)
	}
	return matched
}

// MatchesOne reports whether cmd would notify the single listener l.
// Replay uses this so that historical matching and live matching share
// one rule set.
func (r *Registry) MatchesOne(l *Listener, cmd command.Command, changed bool) bool {
	if !eventApplies(l.Event, cmd, changed) {
		return false
	}
	if l.Path != "" && !TouchesPath(cmd.Data, value.SplitPath(l.Path)) {
		return false
	}
	return true
}

func eventApplies(listenerEvent string, cmd command.Command, changed bool) bool {
	if changed && listenerEvent == EventChange {
		return true
	}
	if cmd.Kind != command.KindEvent {
		return false
	}
	return listenerEvent == cmd.Event || listenerEvent == EventCommit
}

// TriggerOne invokes l's handler with n. A panicking handler is caught
// here, logged, and never aborts dispatch of sibling listeners or the
// enclosing append.
func (r *Registry) TriggerOne(l *Listener, n command.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("listener handler panicked",
				"listener_id", l.ID,
				"event", l.Event,
				"panic", rec,
			)
		}
	}()
	l.Handler(n)
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	return len(r.listeners)
}

// TouchesPath reports whether data touches the subtree named by segs:
// either the full path resolves through data (the path or a descendant
// of it is present), or the descent ends at a non-object leaf before
// the segments are exhausted (an ancestor of the path was overwritten).
func TouchesPath(data map[string]any, segs []string) bool {
	if data == nil {
		return false
	}
	var cur any = data
	for _, seg := range segs {
		obj, ok := cur.(map[string]any)
		if !ok {
			// Leaf reached before the path ended: the data rewrote an
			// ancestor of the watched subtree.
			return true
		}
		next, ok := obj[seg]
		if !ok {
			return false
		}
		cur = next
	}
	return true
}
