package bayes

import (
	"fmt"
	"math"

	"bayesab/domain/core"
)

// probabilityTolerance treats 0.025 and (1-0.95)/2 as the same quantile
const probabilityTolerance = 1e-9

// DefaultCredibleLevel is the mass of the reported interval of A - B
const DefaultCredibleLevel = 0.95

// CompareOptions tunes which quantiles the comparison engine reports
type CompareOptions struct {
	CredibleLevel float64   // interval mass, e.g. 0.95 gives 2.5% and 97.5%
	Quantiles     []float64 // extra probabilities for the difference and lift
}

// DefaultCompareOptions reports the 95% interval plus its median
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{CredibleLevel: DefaultCredibleLevel}
}

// Validate checks the level and quantiles are inside (0,1)
func (o CompareOptions) Validate() error {
	if !(o.CredibleLevel > 0 && o.CredibleLevel < 1) {
		return core.NewValidationError(core.ErrInvalidQuantile, "credible_level", fmt.Sprintf("%g", o.CredibleLevel))
	}
	for _, q := range o.Quantiles {
		if !(q > 0 && q < 1) {
			return core.NewValidationError(core.ErrInvalidQuantile, "quantiles", fmt.Sprintf("%g", q))
		}
	}
	return nil
}

// Probabilities returns the interval bounds, the median and any extra
// quantiles, de-duplicated and in ascending order.
func (o CompareOptions) Probabilities() []float64 {
	tail := (1 - o.CredibleLevel) / 2
	probs := []float64{tail, 0.5, 1 - tail}
	for _, q := range o.Quantiles {
		probs = insertSorted(probs, q)
	}
	return probs
}

func insertSorted(probs []float64, q float64) []float64 {
	for i, p := range probs {
		if math.Abs(p-q) < probabilityTolerance {
			return probs
		}
		if q < p {
			probs = append(probs, 0)
			copy(probs[i+1:], probs[i:])
			probs[i] = q
			return probs
		}
	}
	return append(probs, q)
}

// Comparison is the output of reducing two paired draw vectors
type Comparison struct {
	Statistics Statistics
	Warnings   []NumericalWarning
}
