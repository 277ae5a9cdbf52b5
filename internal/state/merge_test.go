package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_NullDeletesKey(t *testing.T) {
	s := New()

	ok := s.Merge(map[string]any{"a": map[string]any{"b": float64(1), "c": float64(2)}})
	require.True(t, ok)

	ok = s.Merge(map[string]any{"a": map[string]any{"b": nil}})
	require.True(t, ok)

	assert.Equal(t, map[string]any{"a": map[string]any{"c": float64(2)}}, s.Current())
}

func TestMerge_PreviousTracksPriorState(t *testing.T) {
	s := New()

	s.Merge(map[string]any{"x": float64(1)})
	assert.Equal(t, map[string]any{}, s.Previous())

	s.Merge(map[string]any{"x": float64(2)})
	assert.Equal(t, map[string]any{"x": float64(1)}, s.Previous())
	assert.Equal(t, map[string]any{"x": float64(2)}, s.Current())
}

func TestMerge_NilSourceIsNoOp(t *testing.T) {
	s := New()
	s.Merge(map[string]any{"keep": true})
	before := s.Current()
	prevBefore := s.Previous()

	ok := s.Merge(nil)

	assert.False(t, ok)
	assert.Equal(t, before, s.Current())
	assert.Equal(t, prevBefore, s.Previous())
}

func TestMerge_ArraysReplaceWholesale(t *testing.T) {
	s := New()

	s.Merge(map[string]any{"tags": []any{"a", "b", "c"}})
	s.Merge(map[string]any{"tags": []any{"z"}})

	assert.Equal(t, map[string]any{"tags": []any{"z"}}, s.Current())
}

func TestMerge_ArrayNullElementsDropped(t *testing.T) {
	s := New()

	s.Merge(map[string]any{"nums": []any{float64(1), nil, float64(2)}})

	assert.Equal(t, map[string]any{"nums": []any{float64(1), float64(2)}}, s.Current())
}

func TestMerge_NullsStrippedInsideNestedStructures(t *testing.T) {
	s := New()

	s.Merge(map[string]any{
		"outer": map[string]any{
			"list": []any{
				map[string]any{"keep": "yes", "drop": nil},
				nil,
				[]any{nil, "inner"},
			},
		},
	})

	assert.Equal(t, map[string]any{
		"outer": map[string]any{
			"list": []any{
				map[string]any{"keep": "yes"},
				[]any{"inner"},
			},
		},
	}, s.Current())
}

func TestMerge_TypeMismatchSourceWins(t *testing.T) {
	s := New()

	s.Merge(map[string]any{"v": "scalar"})
	s.Merge(map[string]any{"v": map[string]any{"now": "object"}})
	assert.Equal(t, map[string]any{"v": map[string]any{"now": "object"}}, s.Current())

	s.Merge(map[string]any{"v": "scalar again"})
	assert.Equal(t, map[string]any{"v": "scalar again"}, s.Current())
}

func TestMerge_DoesNotAliasSource(t *testing.T) {
	s := New()
	src := map[string]any{"obj": map[string]any{"n": float64(1)}}

	s.Merge(src)
	src["obj"].(map[string]any)["n"] = float64(999)

	assert.Equal(t, float64(1), s.Current()["obj"].(map[string]any)["n"])
}

func TestMerge_LeftFoldEquivalence(t *testing.T) {
	sources := []map[string]any{
		{"a": map[string]any{"b": float64(1)}},
		{"a": map[string]any{"c": float64(2)}, "d": "x"},
		{"a": map[string]any{"b": nil}},
		{"d": nil, "e": []any{float64(1), nil}},
	}

	folded := New()
	for _, src := range sources {
		folded.Merge(src)
	}

	assert.Equal(t, map[string]any{
		"a": map[string]any{"c": float64(2)},
		"e": []any{float64(1)},
	}, folded.Current())
}
