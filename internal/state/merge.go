package state

import "github.com/foldq/foldq/internal/value"

// Merge folds source into the current state with delete-aware semantics,
// snapshotting the previous state first. Returns false (and leaves both
// snapshots untouched) when source is nil.
//
// Semantics:
//   - a nil source value deletes the corresponding key
//   - object merges into object, key by key
//   - anything else overwrites wholesale - arrays are replaced, never
//     merged element-wise
//   - after the merge pass, every nil at any depth is stripped: object
//     keys are removed, array elements are dropped (no holes)
//
// A source object landing on a non-object target leaf overwrites it;
// shape conflicts are never an error. Merge either fully applies or is a
// no-op. After any merge, no reachable value in the current state is nil.
func (s *Store) Merge(source map[string]any) bool {
	if source == nil {
		return false
	}

	s.previous = value.CopyMap(s.current)
	mergeInto(s.current, source)
	stripNullsObject(s.current)
	return true
}

// mergeInto applies source onto target in place. Source subtrees are
// deep-copied as they are written, so later host mutation of the pushed
// payload cannot alias the store.
func mergeInto(target, source map[string]any) {
	for k, sv := range source {
		if sv == nil {
			// Deletion marker. Left in place for the strip pass so that
			// markers nested inside overwritten subtrees are handled by
			// the same code path.
			target[k] = nil
			continue
		}

		srcObj, srcIsObj := sv.(map[string]any)
		dstObj, dstIsObj := target[k].(map[string]any)
		if srcIsObj && dstIsObj {
			mergeInto(dstObj, srcObj)
			continue
		}

		target[k] = value.Copy(sv)
	}
}

// stripNullsObject removes every nil-valued key from obj, recursing into
// nested objects and arrays.
func stripNullsObject(obj map[string]any) {
	for k, v := range obj {
		switch elem := v.(type) {
		case nil:
			delete(obj, k)
		case map[string]any:
			stripNullsObject(elem)
		case []any:
			obj[k] = stripNullsArray(elem)
		}
	}
}

// stripNullsArray drops nil elements and cleans surviving elements.
// Deletion markers remove the element from the array rather than
// leaving a hole.
func stripNullsArray(arr []any) []any {
	out := arr[:0]
	for _, v := range arr {
		switch elem := v.(type) {
		case nil:
			continue
		case map[string]any:
			stripNullsObject(elem)
			out = append(out, elem)
		case []any:
			out = append(out, stripNullsArray(elem))
		default:
			out = append(out, elem)
		}
	}
	return out
}
