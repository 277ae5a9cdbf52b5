// Package testutil provides deterministic stand-ins for the engine's
// nondeterministic parts, plus small recording helpers for tests.
package testutil

import "fmt"

// FixedIDGenerator issues sequential listener IDs.
//
// Production uses random UUIDs; tests and golden traces need stable
// output, so the same registration sequence must yield the same IDs
// every run.
type FixedIDGenerator struct {
	prefix string
	n      int
}

// NewFixedIDGenerator creates a sequential generator. An empty prefix
// defaults to "listener".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "listener"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns "<prefix>-1", "<prefix>-2", ...
//
// Implements engine.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
