package engine

import "github.com/google/uuid"

// IDGenerator produces listener IDs for diagnostics and the journal.
// Implemented by UUIDGenerator (production) and
// testutil.FixedIDGenerator (deterministic tests and goldens).
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator issues random RFC 4122 UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator returns the production ID generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new UUID string.
func (*UUIDGenerator) Generate() string {
	return uuid.NewString()
}
