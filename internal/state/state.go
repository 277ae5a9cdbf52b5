// Package state implements the nested state store.
//
// The store holds the current state and a deep snapshot of the state as
// it stood immediately before the most recent merge. All mutation goes
// through Merge and is performed by the dispatcher alone; every read
// surface returns deep copies, so no caller can reach the live trees.
package state

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/foldq/foldq/internal/value"
)

// Store is the current/previous snapshot pair.
//
// Not safe for concurrent use on its own: the dispatcher owns the store
// and serializes access.
type Store struct {
	current  map[string]any
	previous map[string]any
}

// New returns an empty store. Both snapshots start as empty objects.
func New() *Store {
	return &Store{
		current:  map[string]any{},
		previous: map[string]any{},
	}
}

// Current returns a deep copy of the current state.
func (s *Store) Current() map[string]any {
	return value.CopyMap(s.current)
}

// Previous returns a deep copy of the state as it stood immediately
// before the most recent merge.
func (s *Store) Previous() map[string]any {
	return value.CopyMap(s.previous)
}

// Get resolves a dot-delimited path against the current state and
// returns a deep copy of the value there. The empty path returns the
// whole state. Paths traverse object keys only.
func (s *Store) Get(path string) (any, bool) {
	v, ok := value.Lookup(s.current, value.SplitPath(path))
	if !ok {
		return nil, false
	}
	return value.Copy(v), true
}

// Query resolves a gjson path expression against the current state and
// returns the decoded result. This is the read surface used by tooling
// (CLI, harness assertions): gjson syntax is a superset of dot paths and
// adds wildcards and array addressing. The result is decoded from the
// serialized form and shares nothing with the live state.
//
// Query requires the state to be JSON-serializable; states holding
// non-JSON host values fall back to reporting absence.
func (s *Store) Query(path string) (any, bool) {
	raw, err := json.Marshal(s.current)
	if err != nil {
		return nil, false
	}
	if path == "" {
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, false
		}
		return out, true
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}
