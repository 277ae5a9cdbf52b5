// Package engine implements the dispatcher that ties the store and the
// listener registry together.
//
// ARCHITECTURE:
//
// Single-Writer, Synchronous Dispatch:
// Every appended payload is classified, folded into state, and fully
// dispatched to matching listeners before Append returns. There is no
// background loop and no suspension point; the whole pipeline is one
// synchronous call chain:
//
//  1. Append stamps each payload with the next logical index
//  2. the classifier produces a typed Command
//  3. data commands merge into the store (delete-aware)
//  4. the registry resolves matching listeners, which are triggered
//     one at a time with deep-copied state snapshots
//  5. data and event commands are retained in the visible queue;
//     listener, function, and invalid commands are spliced out
//
// Listener registrations choose a replay scope. Past and all-scope
// listeners are replayed against the retained history, bounded by the
// registering command's own index. Replay reuses the live matching and
// trigger paths, so historical and live dispatch cannot drift apart.
//
// Ordering is defined purely by index, never by call-stack depth:
// a handler may append more entries synchronously and they are
// processed in-line, extending the same history.
//
// ERROR HANDLING: Nothing is fatal to the dispatcher. Invalid payloads
// are logged and dropped, handler panics are contained at the trigger
// boundary, and merge shape conflicts resolve by overwriting. The
// design favors availability of the event stream over strict
// validation.
//
// CRITICAL: The engine must be driven from exactly one goroutine.
// Re-entrant appends from handlers are part of the model and make
// internal locking impossible; external parallelism is not.
package engine
