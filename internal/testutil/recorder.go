package testutil

import "github.com/foldq/foldq/internal/command"

// Recorder collects the notifications a listener receives, in firing
// order. Single-goroutine, like everything driven by the dispatcher.
type Recorder struct {
	notifications []command.Notification
	handler       command.Handler
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	// Materialized once so every Handler() call returns the same func
	// value: the recorder keeps one identity across subscribe,
	// de-duplication, and unsubscribe, like a host-held callback.
	r.handler = func(n command.Notification) {
		r.notifications = append(r.notifications, n)
	}
	return r
}

// Handler returns the recorder's handler value.
func (r *Recorder) Handler() command.Handler {
	return r.handler
}

// Notifications returns everything recorded so far.
func (r *Recorder) Notifications() []command.Notification {
	return r.notifications
}

// Count returns the number of notifications recorded.
func (r *Recorder) Count() int {
	return len(r.notifications)
}

// Events returns just the event names, in firing order.
func (r *Recorder) Events() []string {
	out := make([]string, len(r.notifications))
	for i, n := range r.notifications {
		out[i] = n.Event
	}
	return out
}

// Reset clears recorded notifications.
func (r *Recorder) Reset() {
	r.notifications = nil
}
