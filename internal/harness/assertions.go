package harness

import (
	"fmt"

	"github.com/foldq/foldq/internal/engine"
	"github.com/foldq/foldq/internal/value"
)

// evaluateAssertions checks every assertion and appends a failure
// message per violated one. Comparison goes through canonical JSON so
// a YAML-decoded expectation (integers) and a query result (float64
// after the JSON round trip) compare by structure, not by Go type.
func evaluateAssertions(eng *engine.Engine, assertions []Assertion, res *Result) {
	for i, a := range assertions {
		switch a.Type {
		case "final_state":
			evaluateFinalState(eng, i, a, res)
		case "fired":
			evaluateFired(i, a, res)
		case "retained":
			if res.Retained != *a.Count {
				res.Failures = append(res.Failures, fmt.Sprintf(
					"assertion %d: retained queue has %d entries, want %d",
					i, res.Retained, *a.Count))
			}
		}
	}
}

func evaluateFinalState(eng *engine.Engine, i int, a Assertion, res *Result) {
	actual, ok := eng.Query(a.Path)
	if !ok {
		if a.Expected == nil {
			return
		}
		res.Failures = append(res.Failures, fmt.Sprintf(
			"assertion %d: path %q absent, want %v", i, a.Path, a.Expected))
		return
	}

	got, err := value.MarshalCanonical(actual)
	if err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf(
			"assertion %d: canonicalize actual: %v", i, err))
		return
	}
	want, err := value.MarshalCanonical(a.Expected)
	if err != nil {
		res.Failures = append(res.Failures, fmt.Sprintf(
			"assertion %d: canonicalize expected: %v", i, err))
		return
	}
	if string(got) != string(want) {
		res.Failures = append(res.Failures, fmt.Sprintf(
			"assertion %d: path %q is %s, want %s", i, a.Path, got, want))
	}
}

func evaluateFired(i int, a Assertion, res *Result) {
	count := 0
	for _, ev := range res.Trace {
		if ev.Probe == a.Probe {
			count++
		}
	}
	if count != *a.Count {
		res.Failures = append(res.Failures, fmt.Sprintf(
			"assertion %d: probe %q fired %d times, want %d",
			i, a.Probe, count, *a.Count))
	}
}
