package engine

import (
	"context"
	"fmt"

	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/journal"
	"github.com/foldq/foldq/internal/listener"
	"github.com/foldq/foldq/internal/value"
)

// process routes one classified command through the state machine.
// Each command is processed exactly once: either successfully or as a
// logged failure, never retried.
//
// Data and event commands are retained before their listeners run:
// a handler that appends re-entrantly must find the retained log in
// index order, and a listener it registers must see the triggering
// command inside its replay window.
func (e *Engine) process(cmd command.Command) {
	retained := cmd.Kind == command.KindData || cmd.Kind == command.KindEvent
	if retained {
		e.retained = append(e.retained, retainedEntry{index: cmd.Index, cmd: cmd})
	}

	switch cmd.Kind {
	case command.KindData:
		changed := e.store.Merge(cmd.Data)
		e.logger.Debug("data merged", "index", cmd.Index, "changed", changed)
		if changed {
			e.notify(cmd, true)
		}

	case command.KindEvent:
		changed := false
		if cmd.Data != nil {
			changed = e.store.Merge(cmd.Data)
		}
		e.logger.Debug("event dispatched",
			"index", cmd.Index,
			"event", cmd.Event,
			"changed", changed,
		)
		e.notify(cmd, changed)

	case command.KindFunc:
		e.invokeFunc(cmd)

	case command.KindListenerOn:
		e.handleListenerOn(cmd)

	case command.KindListenerOff:
		removed := e.registry.Unregister(cmd.Event, cmd.Handler)
		e.logger.Debug("listeners removed",
			"index", cmd.Index,
			"event", cmd.Event,
			"count", removed,
		)

	default:
		e.logger.Warn("invalid command dropped",
			"index", cmd.Index,
			"payload", fmt.Sprintf("%v", cmd.Payload),
		)
	}

	e.record(cmd, retained)
}

// notify triggers every listener the registry matches for cmd.
// changed reports whether cmd's data reached the store.
func (e *Engine) notify(cmd command.Command, changed bool) {
	for _, l := range e.registry.Matching(cmd, changed) {
		e.registry.TriggerOne(l, e.notification(l, cmd))
	}
}

// notification builds the payload a listener receives. Every listener
// gets its own deep-copied snapshot pair: handlers may mutate what they
// are handed without affecting the store or their siblings.
func (e *Engine) notification(l *listener.Listener, cmd command.Command) command.Notification {
	n := command.Notification{
		State:    e.store.Current(),
		Previous: e.store.Previous(),
	}
	if l.Event == listener.EventChange {
		n.Event = listener.EventChange
		return n
	}
	n.Event = cmd.Event
	n.Info = value.Copy(cmd.Info)
	n.Data = value.CopyMap(cmd.Data)
	return n
}

// invokeFunc runs an ad-hoc function command against the queue surface.
// Panics are contained here, mirroring the listener trigger boundary.
func (e *Engine) invokeFunc(cmd command.Command) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("function command panicked",
				"index", cmd.Index,
				"panic", rec,
			)
		}
	}()
	cmd.Fn(e)
}

// handleListenerOn materializes a listener and branches on scope:
// past replays without registering, future registers without replay,
// and all replays only when registration actually inserted (a duplicate
// registration must not duplicate replay).
func (e *Engine) handleListenerOn(cmd command.Command) {
	l := &listener.Listener{
		ID:      e.ids.Generate(),
		Event:   cmd.Event,
		Path:    cmd.Path,
		Scope:   cmd.Scope,
		Handler: cmd.Handler,
		Index:   cmd.Index,
	}

	switch cmd.Scope {
	case command.ScopePast:
		e.replay(l, cmd.Index)
	case command.ScopeFuture:
		e.registry.Register(l)
	default: // command.ScopeAll
		if e.registry.Register(l) {
			e.replay(l, cmd.Index)
		}
	}
}

// record sends the processed command to the journal, when one is
// attached. Journal failures are logged and never interrupt dispatch.
func (e *Engine) record(cmd command.Command, retained bool) {
	if e.journal == nil {
		return
	}
	entry := journal.Entry{
		Seq:      cmd.Index,
		Kind:     cmd.Kind.String(),
		Event:    cmd.Event,
		Payload:  payloadJSON(cmd.Payload),
		Retained: retained,
	}
	if err := e.journal.Record(context.Background(), entry); err != nil {
		e.logger.Error("journal record failed", "index", cmd.Index, "error", err)
	}
}

// payloadJSON renders a payload for the journal: canonical JSON when
// the payload is serializable, otherwise a quoted type descriptor
// (listener registrations carry handler funcs, function commands are
// funcs outright).
func payloadJSON(payload any) string {
	raw, err := value.MarshalCanonical(payload)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprintf("<%T>", payload))
	}
	return string(raw)
}
