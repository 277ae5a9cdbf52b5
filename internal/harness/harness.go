package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/foldq/foldq/internal/command"
	"github.com/foldq/foldq/internal/engine"
	"github.com/foldq/foldq/internal/testutil"
)

// TraceEvent is one probe notification, in firing order across all
// probes.
type TraceEvent struct {
	Probe string
	Event string
	Data  map[string]any
	State map[string]any
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario   *Scenario
	Trace      []TraceEvent
	FinalState map[string]any
	Retained   int
	Failures   []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario against a fresh engine.
//
// Determinism: the engine gets a fixed listener ID generator and a
// discarded logger, so the same scenario always produces the same
// trace. Probe notifications append to one shared trace in firing
// order, which is itself deterministic (registration order per
// command, index order across commands).
func Run(scenario *Scenario) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	res := &Result{Scenario: scenario}
	probes := map[string]command.Handler{}

	seed := make([]any, len(scenario.Seed))
	for i, entry := range scenario.Seed {
		seed[i] = entry
	}

	eng := engine.New(
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator("probe")),
		engine.WithInitialQueue(seed),
	)

	for i, step := range scenario.Steps {
		if err := applyStep(eng, step, probes, res); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	res.FinalState, _ = queryState(eng, "")
	res.Retained = len(eng.Snapshot())

	evaluateAssertions(eng, scenario.Assertions, res)
	return res, nil
}

func applyStep(eng *engine.Engine, step Step, probes map[string]command.Handler, res *Result) error {
	switch {
	case step.Push != nil:
		eng.Append(step.Push)
		return nil

	case step.Subscribe != nil:
		sub := step.Subscribe
		handler, ok := probes[sub.Probe]
		if !ok {
			// One handler value per probe name: re-subscribing the same
			// probe exercises the registry's de-duplication exactly like
			// a host re-registering one callback.
			name := sub.Probe
			handler = func(n command.Notification) {
				data := n.Data
				if len(data) == 0 {
					data = nil
				}
				res.Trace = append(res.Trace, TraceEvent{
					Probe: name,
					Event: n.Event,
					Data:  data,
					State: n.State,
				})
			}
			probes[sub.Probe] = handler
		}
		eng.Subscribe(sub.Event, handler, engine.SubscribeOptions{
			Path:  sub.Path,
			Scope: command.NormalizeScope(sub.Scope),
		})
		return nil

	case step.Unsubscribe != nil:
		handler, ok := probes[step.Unsubscribe.Probe]
		if !ok {
			return fmt.Errorf("unsubscribe references unknown probe %q", step.Unsubscribe.Probe)
		}
		eng.Unsubscribe(step.Unsubscribe.Event, handler)
		return nil

	case step.Set != nil:
		return eng.Set(step.Set.Path, step.Set.Value)

	default:
		return fmt.Errorf("empty step")
	}
}

func queryState(eng *engine.Engine, path string) (map[string]any, bool) {
	v, ok := eng.Query(path)
	if !ok {
		return nil, false
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return nil, false
	}
	return obj, true
}
