// Package value provides the nested value model shared by the store,
// the dispatcher, and the journal.
//
// Values are plain Go trees as produced by encoding/json and yaml.v3
// decoding: map[string]any for objects, []any for arrays, and
// string/bool/numeric scalars at the leaves. The package deliberately
// does not define wrapper types - pushed data is opaque host data and
// travels through the system in its decoded shape.
package value

import (
	"encoding/json"
	"strings"
)

// Copy returns a deep copy of v.
//
// Maps and slices are copied recursively; scalars are returned as-is
// (Go strings and numbers are immutable values). json.Number leaves are
// preserved rather than converted, so a copy of decoded input marshals
// back to the same text.
//
// Copy is the only sanctioned way state leaves the store: callers may
// mutate the result freely without affecting the original tree.
func Copy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Copy(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Copy(elem)
		}
		return out
	default:
		return v
	}
}

// CopyMap is Copy specialized to object roots. A nil input yields an
// empty map, never nil, so callers can index the result unconditionally.
func CopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, elem := range m {
		out[k] = Copy(elem)
	}
	return out
}

// SplitPath splits a dot-delimited path into key segments.
// The empty path addresses the whole value and yields no segments.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segs []string) string {
	return strings.Join(segs, ".")
}

// Lookup descends root along segs and reports whether the full path
// resolves. Only object keys are traversed; paths do not index into
// arrays. An empty segs addresses root itself.
func Lookup(root any, segs []string) (any, bool) {
	cur := root
	for _, seg := range segs {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Normalize round-trips v through JSON so that host-constructed trees
// (typed structs, map[any]any from YAML, int leaves) collapse onto the
// decoded-JSON shape the rest of the system assumes. Returns the input
// unchanged if it does not marshal.
func Normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
