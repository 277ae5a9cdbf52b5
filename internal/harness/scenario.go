// Package harness provides a YAML-driven scenario runner for the
// dispatcher.
//
// A scenario seeds the queue, plays a sequence of steps against a real
// engine, and asserts on the final state and on what named probes
// observed. Probes are recording listeners installed by subscribe
// steps; their notifications form the trace, which can be compared
// against golden files for byte-stable regression coverage.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one declarative test case.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Seed contains queue entries that exist before the engine does.
	// They are processed by the construction-time scan.
	Seed []map[string]any `yaml:"seed,omitempty"`

	// Steps are played in order after construction.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state, probe counts, and the
	// retained queue.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one action against the engine. Exactly one field must be
// set.
type Step struct {
	// Push appends a raw payload (a data or event mapping).
	Push map[string]any `yaml:"push,omitempty"`

	// Subscribe installs a named recording probe.
	Subscribe *SubscribeStep `yaml:"subscribe,omitempty"`

	// Unsubscribe removes a probe's listener.
	Unsubscribe *UnsubscribeStep `yaml:"unsubscribe,omitempty"`

	// Set applies a path patch.
	Set *SetStep `yaml:"set,omitempty"`
}

// SubscribeStep names a probe and its subscription.
type SubscribeStep struct {
	Probe string `yaml:"probe"`
	Event string `yaml:"event"`
	Path  string `yaml:"path,omitempty"`
	Scope string `yaml:"scope,omitempty"`
}

// UnsubscribeStep removes the named probe's subscription to an event.
type UnsubscribeStep struct {
	Probe string `yaml:"probe"`
	Event string `yaml:"event"`
}

// SetStep applies a dot-path patch; a missing value deletes the key.
type SetStep struct {
	Path  string `yaml:"path"`
	Value any    `yaml:"value,omitempty"`
}

// Assertion validates one aspect of the run.
type Assertion struct {
	// Type is one of "final_state", "fired", "retained".
	Type string `yaml:"type"`

	// Path is the gjson path queried by final_state.
	Path string `yaml:"path,omitempty"`

	// Expected is the value final_state compares against.
	Expected any `yaml:"expected,omitempty"`

	// Probe names the probe checked by fired.
	Probe string `yaml:"probe,omitempty"`

	// Count is the expected firing count (fired) or retained queue
	// length (retained).
	Count *int `yaml:"count,omitempty"`
}

// Load reads and validates a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks structural requirements before a scenario runs.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	set := 0
	if st.Push != nil {
		set++
	}
	if st.Subscribe != nil {
		set++
		if st.Subscribe.Probe == "" || st.Subscribe.Event == "" {
			return fmt.Errorf("subscribe requires probe and event")
		}
	}
	if st.Unsubscribe != nil {
		set++
		if st.Unsubscribe.Probe == "" || st.Unsubscribe.Event == "" {
			return fmt.Errorf("unsubscribe requires probe and event")
		}
	}
	if st.Set != nil {
		set++
		if st.Set.Path == "" {
			return fmt.Errorf("set requires path")
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of push, subscribe, unsubscribe, set must be given")
	}
	return nil
}

func (a *Assertion) validate() error {
	switch a.Type {
	case "final_state":
		// Path may be empty (whole state); Expected may legitimately
		// be nil for absence checks.
		return nil
	case "fired":
		if a.Probe == "" || a.Count == nil {
			return fmt.Errorf("fired requires probe and count")
		}
		return nil
	case "retained":
		if a.Count == nil {
			return fmt.Errorf("retained requires count")
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
