package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random streams for deterministic sampling
type RNGPort interface {
	// Stream returns a deterministic source for a named stream under a base seed.
	// Distinct labels give independent streams; identical inputs give identical sequences.
	Stream(seed uint64, labels ...string) rand.Source

	// NewSeed returns a fresh base seed for callers that did not supply one
	NewSeed() uint64
}
