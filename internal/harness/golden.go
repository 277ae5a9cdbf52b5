package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/foldq/foldq/internal/value"
)

// TraceSnapshot is the golden-file shape: the full probe trace plus the
// final state and retained queue length. Serialized canonically so the
// bytes are stable across runs and platforms.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	FinalState   map[string]any
	Retained     int
}

func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		eventMap := map[string]any{
			"probe": ev.Probe,
			"event": ev.Event,
		}
		if ev.Data != nil {
			eventMap["data"] = ev.Data
		}
		if ev.State != nil {
			eventMap["state"] = ev.State
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final_state":   s.FinalState,
		"retained":      s.Retained,
	}
}

// RunWithGolden executes a scenario, fails the test on any assertion
// violation, and compares the trace snapshot against
// testdata/golden/{name}.golden.
//
// Regenerate goldens with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		t.Errorf("%s: %s", scenario.Name, f)
	}

	return assertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the named
// golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()
	return assertGolden(t, scenarioName, result)
}

func assertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		FinalState:   result.FinalState,
		Retained:     result.Retained,
	}

	traceJSON, err := value.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return fmt.Errorf("marshal trace snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
