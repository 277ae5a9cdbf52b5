package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_DeepIndependence(t *testing.T) {
	original := map[string]any{
		"user": map[string]any{
			"name": "ada",
			"tags": []any{"admin", "ops"},
		},
		"count": float64(3),
	}

	copied := Copy(original).(map[string]any)

	// Mutate the copy at every depth.
	copied["count"] = float64(99)
	copied["user"].(map[string]any)["name"] = "grace"
	copied["user"].(map[string]any)["tags"].([]any)[0] = "guest"

	assert.Equal(t, float64(3), original["count"])
	assert.Equal(t, "ada", original["user"].(map[string]any)["name"])
	assert.Equal(t, "admin", original["user"].(map[string]any)["tags"].([]any)[0])
}

func TestCopy_Scalars(t *testing.T) {
	assert.Equal(t, "x", Copy("x"))
	assert.Equal(t, true, Copy(true))
	assert.Nil(t, Copy(nil))
}

func TestCopyMap_NilInput(t *testing.T) {
	out := CopyMap(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSplitPath(t *testing.T) {
	assert.Nil(t, SplitPath(""))
	assert.Equal(t, []string{"a"}, SplitPath("a"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitPath("a.b.c"))
}

func TestLookup(t *testing.T) {
	root := map[string]any{
		"page": map[string]any{
			"info": map[string]any{"lang": "en"},
		},
	}

	got, ok := Lookup(root, []string{"page", "info", "lang"})
	require.True(t, ok)
	assert.Equal(t, "en", got)

	got, ok = Lookup(root, nil)
	require.True(t, ok)
	assert.Equal(t, root, got)

	_, ok = Lookup(root, []string{"page", "missing"})
	assert.False(t, ok)

	// Descending through a scalar fails rather than panicking.
	_, ok = Lookup(root, []string{"page", "info", "lang", "deeper"})
	assert.False(t, ok)
}

func TestNormalize_CollapsesTypedValues(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	got := Normalize(payload{Name: "cart", Count: 2})
	obj, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cart", obj["name"])
	assert.Equal(t, float64(2), obj["count"])
}

func TestMarshalCanonical_SortedKeysAndNoHTMLEscape(t *testing.T) {
	raw, err := MarshalCanonical(map[string]any{
		"b":    "x<y>&z",
		"a":    float64(1),
		"nest": map[string]any{"z": nil, "a": true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"x<y>&z","nest":{"a":true,"z":null}}`, string(raw))
}

func TestMarshalCanonical_ArraysAndNumbers(t *testing.T) {
	raw, err := MarshalCanonical([]any{float64(1), nil, "two", float64(2.5)})
	require.NoError(t, err)
	assert.Equal(t, `[1,null,"two",2.5]`, string(raw))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	obj := map[string]any{"gamma": float64(3), "alpha": float64(1), "beta": float64(2)}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestMarshalCanonical_RejectsUnsupportedTypes(t *testing.T) {
	_, err := MarshalCanonical(make(chan int))
	assert.Error(t, err)
}
