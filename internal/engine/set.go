package engine

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Set builds a nested data command from a dot-delimited path and routes
// it through Append. Set("cart.total", 42) is equivalent to appending
// {"data": {"cart": {"total": 42}}}; a nil value produces a deletion
// patch for the key at path.
//
// The value must be JSON-serializable - Set is a convenience for
// plain-data patches, not a side door around classification.
func (e *Engine) Set(path string, v any) error {
	if path == "" {
		return fmt.Errorf("set: path is required")
	}

	var (
		raw []byte
		err error
	)
	if v == nil {
		raw, err = sjson.SetRawBytes([]byte("{}"), path, []byte("null"))
	} else {
		raw, err = sjson.SetBytes([]byte("{}"), path, v)
	}
	if err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("set %q: decode patch: %w", path, err)
	}

	e.Append(map[string]any{"data": data})
	return nil
}
