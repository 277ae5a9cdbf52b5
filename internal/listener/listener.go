// Package listener holds the listener registry: registration with
// identity de-duplication, matching of commands to listeners, and the
// trigger boundary that contains handler panics.
package listener

import "github.com/foldq/foldq/internal/command"

// Synthetic event names reserved by the dispatcher. Hosts subscribe to
// them like any named event.
const (
	// EventChange fires on every successful state merge, independent of
	// any user-named event.
	EventChange = "store:change"
	// EventCommit fires for every event command, carrying its
	// name, info, and data.
	EventCommit = "store:event"
	// EventReady fires once, after all pre-existing queue entries have
	// been processed at construction.
	EventReady = "store:ready"
)

// Listener is a materialized subscription.
//
// Identity for de-duplication is the (Event, Path, Handler) triple;
// ID exists for logs and the journal, not for identity.
type Listener struct {
	// ID is a generated identifier used in diagnostics.
	ID string
	// Event is the event this listener reacts to, possibly synthetic.
	Event string
	// Path optionally restricts triggering to commands whose data
	// touches this dot-delimited subtree. Empty means any path.
	Path string
	// Scope is the replay policy the listener was registered with.
	Scope command.Scope
	// Handler is the callback to invoke.
	Handler command.Handler
	// Index is the original queue index of the registering command.
	Index int
}

// matches reports whether this listener is a duplicate of the given
// registration triple.
func (l *Listener) matches(event, path string, handler command.Handler) bool {
	return l.Event == event &&
		l.Path == path &&
		command.HandlerPointer(l.Handler) == command.HandlerPointer(handler)
}
