// Package command classifies raw queue payloads into typed commands.
//
// Classification is pure: it inspects the shape of a payload and produces
// an immutable Command. It never touches state, never invokes handlers,
// and never mutates the payload. The dispatcher owns everything that
// happens after classification.
package command

import "unsafe"

// Kind identifies what a queued payload asks the dispatcher to do.
type Kind int

const (
	// KindInvalid marks a payload that satisfies no recognized shape or
	// carries a malformed required field. Invalid commands are logged and
	// dropped; they never merge and never trigger listeners.
	KindInvalid Kind = iota
	// KindData folds a nested mapping into the state store.
	KindData
	// KindEvent announces a named event, optionally carrying data to merge.
	KindEvent
	// KindListenerOn registers a listener.
	KindListenerOn
	// KindListenerOff removes listeners.
	KindListenerOff
	// KindFunc invokes an ad-hoc function against the queue.
	KindFunc
)

// String returns the lowercase name used in logs and the journal.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindEvent:
		return "event"
	case KindListenerOn:
		return "listener_on"
	case KindListenerOff:
		return "listener_off"
	case KindFunc:
		return "func"
	default:
		return "invalid"
	}
}

// Scope is the replay policy of a newly registered listener.
type Scope string

const (
	// ScopeAll replays matching history and stays registered for future
	// commands. This is the default.
	ScopeAll Scope = "all"
	// ScopePast replays matching history only; the listener is never
	// registered for future commands.
	ScopePast Scope = "past"
	// ScopeFuture registers without replay.
	ScopeFuture Scope = "future"
)

// NormalizeScope maps a raw scope string onto a Scope.
// Empty and unrecognized values fall back to ScopeAll.
func NormalizeScope(raw string) Scope {
	switch Scope(raw) {
	case ScopePast, ScopeFuture, ScopeAll:
		return Scope(raw)
	default:
		return ScopeAll
	}
}

// Notification is what a triggered listener receives. For change-bound
// listeners Event holds the synthetic change event and State/Previous the
// snapshot pair; for named events it additionally carries the event's
// Info and Data as pushed.
type Notification struct {
	Event    string
	Info     any
	Data     map[string]any
	State    map[string]any
	Previous map[string]any
}

// Handler is the callback shape listeners are registered with.
type Handler func(Notification)

// Queue is the surface an ad-hoc Func command sees: it may append further
// entries (processed in-line, in index order) and inspect the retained
// visible queue.
type Queue interface {
	Append(entries ...any)
	Snapshot() []any
}

// Func is an ad-hoc function payload. It is invoked synchronously,
// exactly once, before the append call that carried it returns.
type Func func(q Queue)

// Command is one classified unit of work. Commands are ephemeral: the
// dispatcher constructs one per payload and discards it after dispatch.
// Index is the payload's position in the logical queue at classification
// time and is used only for replay-boundary computation.
type Command struct {
	Kind    Kind
	Payload any
	Data    map[string]any
	Event   string
	Info    any
	Path    string
	Scope   Scope
	Handler Handler
	Fn      Func
	Index   int
}

// Valid reports whether the command may be dispatched.
func (c Command) Valid() bool {
	return c.Kind != KindInvalid
}

// HandlerPointer returns the identity of a handler function. Two
// registrations are duplicates when event, path, and this pointer all
// match.
//
// Identity is the func value's data word (the pointer to its funcval),
// not the code pointer reflect exposes: distinct closure instances must
// compare as distinct handlers even when they share a compiled body,
// and the same func value held by the host must compare equal across
// subscribe and unsubscribe.
func HandlerPointer(h Handler) uintptr {
	if h == nil {
		return 0
	}
	return uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&h)))
}
