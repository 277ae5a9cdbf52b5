package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Event(t *testing.T) {
	cmd := Classify(map[string]any{
		"event": "cart:add",
		"info":  map[string]any{"source": "ui"},
		"data":  map[string]any{"cart": map[string]any{"items": float64(2)}},
	}, 4)

	require.Equal(t, KindEvent, cmd.Kind)
	assert.Equal(t, "cart:add", cmd.Event)
	assert.Equal(t, 4, cmd.Index)
	assert.Equal(t, map[string]any{"source": "ui"}, cmd.Info)
	require.NotNil(t, cmd.Data)
	assert.Contains(t, cmd.Data, "cart")
}

func TestClassify_EventWithoutData(t *testing.T) {
	cmd := Classify(map[string]any{"event": "ping"}, 0)

	require.Equal(t, KindEvent, cmd.Kind)
	assert.Nil(t, cmd.Data)
	assert.Nil(t, cmd.Info)
}

func TestClassify_EventNameMustBeString(t *testing.T) {
	cmd := Classify(map[string]any{"event": 42}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)

	cmd = Classify(map[string]any{"event": ""}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)
}

func TestClassify_EventIgnoresNonMappingData(t *testing.T) {
	cmd := Classify(map[string]any{"event": "ping", "data": "not-a-map"}, 0)

	require.Equal(t, KindEvent, cmd.Kind)
	assert.Nil(t, cmd.Data)
}

func TestClassify_Data(t *testing.T) {
	cmd := Classify(map[string]any{
		"data": map[string]any{"page": map[string]any{"id": "home"}},
	}, 1)

	require.Equal(t, KindData, cmd.Kind)
	assert.Equal(t, "home", cmd.Data["page"].(map[string]any)["id"])
}

func TestClassify_DataMustBeMapping(t *testing.T) {
	cmd := Classify(map[string]any{"data": []any{"x"}}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)
}

func TestClassify_ListenerOn(t *testing.T) {
	h := Handler(func(Notification) {})
	cmd := Classify(map[string]any{
		"on":      "cart:add",
		"handler": h,
		"path":    "cart.items",
		"scope":   "past",
	}, 7)

	require.Equal(t, KindListenerOn, cmd.Kind)
	assert.Equal(t, "cart:add", cmd.Event)
	assert.Equal(t, "cart.items", cmd.Path)
	assert.Equal(t, ScopePast, cmd.Scope)
	assert.Equal(t, HandlerPointer(h), HandlerPointer(cmd.Handler))
}

func TestClassify_ListenerOnDefaultsScopeAll(t *testing.T) {
	cmd := Classify(map[string]any{
		"on":      "x",
		"handler": func(Notification) {},
	}, 0)

	require.Equal(t, KindListenerOn, cmd.Kind)
	assert.Equal(t, ScopeAll, cmd.Scope)
}

func TestClassify_ListenerOnUnrecognizedScopeFallsBackToAll(t *testing.T) {
	cmd := Classify(map[string]any{
		"on":      "x",
		"handler": func(Notification) {},
		"scope":   "sometimes",
	}, 0)

	require.Equal(t, KindListenerOn, cmd.Kind)
	assert.Equal(t, ScopeAll, cmd.Scope)
}

func TestClassify_ListenerOnRequiresHandler(t *testing.T) {
	cmd := Classify(map[string]any{"on": "x"}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)

	cmd = Classify(map[string]any{"on": "x", "handler": "not callable"}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)
}

func TestClassify_ListenerOnRejectsNonStringPath(t *testing.T) {
	cmd := Classify(map[string]any{
		"on":      "x",
		"handler": func(Notification) {},
		"path":    12,
	}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)
}

func TestClassify_ListenerOff(t *testing.T) {
	cmd := Classify(map[string]any{"off": "cart:add"}, 2)

	require.Equal(t, KindListenerOff, cmd.Kind)
	assert.Equal(t, "cart:add", cmd.Event)
	assert.Nil(t, cmd.Handler)
}

func TestClassify_ListenerOffWithHandler(t *testing.T) {
	h := func(Notification) {}
	cmd := Classify(map[string]any{"off": "cart:add", "handler": h}, 0)

	require.Equal(t, KindListenerOff, cmd.Kind)
	assert.NotNil(t, cmd.Handler)
}

func TestClassify_ListenerOffRejectsNonCallableHandler(t *testing.T) {
	cmd := Classify(map[string]any{"off": "x", "handler": 3}, 0)
	assert.Equal(t, KindInvalid, cmd.Kind)
}

func TestClassify_Func(t *testing.T) {
	called := false
	cmd := Classify(func(Queue) { called = true }, 3)

	require.Equal(t, KindFunc, cmd.Kind)
	cmd.Fn(nil)
	assert.True(t, called)
}

func TestClassify_BareFunc(t *testing.T) {
	called := false
	cmd := Classify(func() { called = true }, 0)

	require.Equal(t, KindFunc, cmd.Kind)
	cmd.Fn(nil)
	assert.True(t, called)
}

func TestClassify_Invalid(t *testing.T) {
	for _, payload := range []any{
		"just a string",
		42,
		nil,
		[]any{"list"},
		map[string]any{"unrelated": true},
	} {
		cmd := Classify(payload, 0)
		assert.Equal(t, KindInvalid, cmd.Kind, "payload %v", payload)
		assert.False(t, cmd.Valid())
	}
}

func TestClassify_AmbiguousShapesAreInvalid(t *testing.T) {
	h := func(Notification) {}

	for name, payload := range map[string]map[string]any{
		"event_and_on":  {"event": "x", "on": "y", "handler": h},
		"event_and_off": {"event": "x", "off": "y"},
		"data_and_on":   {"data": map[string]any{}, "on": "y", "handler": h},
		"data_and_off":  {"data": map[string]any{}, "off": "y"},
		"on_and_off":    {"on": "x", "handler": h, "off": "y"},
	} {
		cmd := Classify(payload, 0)
		assert.Equal(t, KindInvalid, cmd.Kind, name)
	}
}

func TestNormalizeScope(t *testing.T) {
	assert.Equal(t, ScopeAll, NormalizeScope(""))
	assert.Equal(t, ScopeAll, NormalizeScope("bogus"))
	assert.Equal(t, ScopePast, NormalizeScope("past"))
	assert.Equal(t, ScopeFuture, NormalizeScope("future"))
	assert.Equal(t, ScopeAll, NormalizeScope("all"))
}

func noteNothing(Notification) {}

func noteCount(n Notification) { _ = len(n.Data) }

func TestHandlerPointer_Identity(t *testing.T) {
	h1 := Handler(noteNothing)
	h2 := Handler(noteCount)

	assert.Equal(t, HandlerPointer(h1), HandlerPointer(h1))
	assert.NotEqual(t, HandlerPointer(h1), HandlerPointer(h2))
	assert.Zero(t, HandlerPointer(nil))
}
