package rng

import (
	"math/rand/v2"

	"bayesab/domain/core"
)

// Streams implements ports.RNGPort with PCG generators keyed by hashed labels
type Streams struct{}

// NewStreams creates a stream factory
func NewStreams() *Streams {
	return &Streams{}
}

// Stream creates a deterministic PCG source for (seed, labels). The second
// PCG word is derived by hashing the labels so that group A, group B and
// every simulation trial get uncorrelated sequences from one base seed.
func (s *Streams) Stream(seed uint64, labels ...string) rand.Source {
	return rand.NewPCG(seed, core.StreamSeed(seed, labels...))
}

// NewSeed draws a base seed from the runtime's randomly seeded generator
func (s *Streams) NewSeed() uint64 {
	return rand.Uint64()
}
