package ports

import (
	"math/rand/v2"

	"bayesab/domain/bayes"
)

// PosteriorSampler draws Monte Carlo samples from a posterior
type PosteriorSampler interface {
	Sample(posterior bayes.PosteriorParams, count int, src rand.Source) ([]float64, error)
}

// Comparator reduces two index-aligned draw vectors into comparison statistics
type Comparator interface {
	Compare(drawsA, drawsB []float64, opts bayes.CompareOptions) (bayes.Comparison, error)
}
