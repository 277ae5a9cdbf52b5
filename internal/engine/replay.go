package engine

import (
	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/listener"
)

// replay runs the retained history against a single newly registered
// listener. The window is every retained command whose original index
// is strictly below the registering command's index - entries spliced
// out earlier (listener ops, functions, invalid payloads) never re-enter
// a replay window.
//
// Replay reuses the live matching rule and trigger boundary, so a
// listener cannot behave differently for historical commands than it
// would have live. Snapshots handed to replayed handlers are the
// store's current/previous pair as of replay time: the store keeps one
// previous snapshot, not a full history.
//
// The slice header is captured up front: a replayed handler appending
// re-entrantly extends the retained log, but those new entries carry
// indices at or above the registration index and belong to the
// listener's future, not its past.
func (e *Engine) replay(l *listener.Listener, before int) {
	history := e.retained
	fired := 0
	for _, entry := range history {
		if entry.index >= before {
			break
		}
		changed := commandChangedState(entry.cmd)
		if !e.registry.MatchesOne(l, entry.cmd, changed) {
			continue
		}
		e.registry.TriggerOne(l, e.notification(l, entry.cmd))
		fired++
	}
	e.logger.Debug("history replayed",
		"listener_id", l.ID,
		"event", l.Event,
		"window_end", before,
		"fired", fired,
	)
}

// commandChangedState reports whether a retained command merged data
// when it was originally processed. Data commands always merged;
// event commands merged only when they carried data.
func commandChangedState(cmd command.Command) bool {
	switch cmd.Kind {
	case command.KindData:
		return true
	case command.KindEvent:
		return cmd.Data != nil
	default:
		return false
	}
}
