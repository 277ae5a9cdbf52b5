// Package manifest compiles declarative CUE store manifests.
//
// A manifest describes how to bootstrap an engine: the store name, the
// queue entries that exist before the engine does, and the
// subscriptions installed after construction. Compilation uses the CUE
// SDK's Go API directly, never a CLI subprocess.
//
// The manifest shape:
//
//	store: {
//		name: "checkout"
//		seed: [
//			{data: {cart: {items: []}}},
//			{event: "cart:open"},
//		]
//		subscriptions: [
//			{event: "store:change", path: "cart", scope: "future"},
//		]
//	}
package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/foldq/foldq/internal/command"
)

// Manifest is a compiled store manifest.
type Manifest struct {
	// Name identifies the store instance.
	Name string

	// Seed holds queue entries processed by the construction-time scan,
	// in manifest order.
	Seed []map[string]any

	// Subscriptions are installed, in order, after construction.
	Subscriptions []Subscription
}

// Subscription is one declarative listener registration. The handler is
// supplied by the host at bootstrap time; a manifest only carries the
// matching triple.
type Subscription struct {
	Event string
	Path  string
	Scope command.Scope
}

// Queue converts the seed into the shape the engine's initial queue
// takes.
func (m *Manifest) Queue() []any {
	entries := make([]any, len(m.Seed))
	for i, e := range m.Seed {
		entries[i] = e
	}
	return entries
}

// Compile parses a CUE value into a Manifest. The value should be the
// store struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`store: { name: "checkout" }`)
//	m, err := manifest.Compile(v.LookupPath(cue.ParsePath("store")))
//
// Unknown scope strings are rejected here rather than silently
// defaulting: a manifest is authored ahead of time and a typo'd scope
// should fail the build, not change replay behavior at runtime.
func Compile(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	if name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "name must be non-empty",
			Pos:     nameVal.Pos(),
		}
	}
	m.Name = name

	if m.Seed, err = parseSeed(v); err != nil {
		return nil, err
	}
	if m.Subscriptions, err = parseSubscriptions(v); err != nil {
		return nil, err
	}

	return m, nil
}

func parseSeed(v cue.Value) ([]map[string]any, error) {
	seedVal := v.LookupPath(cue.ParsePath("seed"))
	if !seedVal.Exists() {
		return nil, nil
	}

	iter, err := seedVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var seed []map[string]any
	for iter.Next() {
		var entry map[string]any
		if err := iter.Value().Decode(&entry); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("seed[%d]", len(seed)),
				Message: fmt.Sprintf("seed entry must be a struct: %v", err),
				Pos:     iter.Value().Pos(),
			}
		}
		seed = append(seed, entry)
	}
	return seed, nil
}

func parseSubscriptions(v cue.Value) ([]Subscription, error) {
	subsVal := v.LookupPath(cue.ParsePath("subscriptions"))
	if !subsVal.Exists() {
		return nil, nil
	}

	iter, err := subsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var subs []Subscription
	for iter.Next() {
		sub, err := parseSubscription(iter.Value(), len(subs))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func parseSubscription(v cue.Value, index int) (Subscription, error) {
	var sub Subscription

	eventVal := v.LookupPath(cue.ParsePath("event"))
	if !eventVal.Exists() {
		return sub, &CompileError{
			Field:   fmt.Sprintf("subscriptions[%d].event", index),
			Message: "event is required",
			Pos:     v.Pos(),
		}
	}
	event, err := eventVal.String()
	if err != nil {
		return sub, formatCUEError(err)
	}
	if event == "" {
		return sub, &CompileError{
			Field:   fmt.Sprintf("subscriptions[%d].event", index),
			Message: "event must be non-empty",
			Pos:     eventVal.Pos(),
		}
	}
	sub.Event = event

	pathVal := v.LookupPath(cue.ParsePath("path"))
	if pathVal.Exists() {
		if sub.Path, err = pathVal.String(); err != nil {
			return sub, formatCUEError(err)
		}
	}

	scopeVal := v.LookupPath(cue.ParsePath("scope"))
	if !scopeVal.Exists() {
		sub.Scope = command.ScopeAll
		return sub, nil
	}
	raw, err := scopeVal.String()
	if err != nil {
		return sub, formatCUEError(err)
	}
	switch command.Scope(raw) {
	case command.ScopeAll, command.ScopePast, command.ScopeFuture:
		sub.Scope = command.Scope(raw)
	default:
		return sub, &CompileError{
			Field:   fmt.Sprintf("subscriptions[%d].scope", index),
			Message: fmt.Sprintf("unknown scope %q (want all, past, or future)", raw),
			Pos:     scopeVal.Pos(),
		}
	}
	return sub, nil
}

// CompileError is a manifest compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}
