package comparison

import (
	"fmt"
	"math"
	"sort"

	"bayesab/domain/bayes"
	"bayesab/domain/core"

	"gonum.org/v1/gonum/stat"
)

// Engine reduces paired posterior draws into decision statistics.
//
// Pairing is element-wise: drawsA[i] is compared with drawsB[i] only. Because
// the two vectors come from independent streams this is the Monte Carlo
// estimator of P(A > B) under the product of the two posterior marginals.
// Ties count as "not greater", so P(A>B) + P(B>A) = 1 - P(A=B).
type Engine struct{}

// NewEngine creates a comparison engine
func NewEngine() *Engine {
	return &Engine{}
}

// Compare computes P(A>B), the expected loss of choosing each group and
// quantiles of A-B and (A-B)/B. Pairs holding a NaN or Inf, or whose
// difference overflows, are skipped and reported; if no finite pair remains
// every statistic is NaN.
func (e *Engine) Compare(drawsA, drawsB []float64, opts bayes.CompareOptions) (bayes.Comparison, error) {
	if len(drawsA) == 0 || len(drawsB) == 0 {
		return bayes.Comparison{}, core.NewStructuralError(core.ErrEmptyDraws, "cannot compare empty draw vectors")
	}
	if len(drawsA) != len(drawsB) {
		return bayes.Comparison{}, core.NewStructuralError(core.ErrDrawLengthMismatch,
			fmt.Sprintf("A has %d draws, B has %d", len(drawsA), len(drawsB)))
	}
	if opts.CredibleLevel == 0 {
		opts.CredibleLevel = bayes.DefaultCredibleLevel
	}
	if err := opts.Validate(); err != nil {
		return bayes.Comparison{}, err
	}

	n := len(drawsA)
	diffs := make([]float64, 0, n)
	lifts := make([]float64, 0, n)

	// Losses and the mean difference are running means so that finite draws
	// near the float64 limit cannot overflow an intermediate sum.
	var wins int
	var lossA, lossB, meanDiff float64
	var nonFinite, zeroB int
	minA, maxA := math.Inf(1), math.Inf(-1)
	minB, maxB := math.Inf(1), math.Inf(-1)

	for i := 0; i < n; i++ {
		a, b := drawsA[i], drawsB[i]
		d := a - b
		if !finite(a) || !finite(b) || !finite(d) {
			nonFinite++
			continue
		}

		minA, maxA = math.Min(minA, a), math.Max(maxA, a)
		minB, maxB = math.Min(minB, b), math.Max(maxB, b)

		if d > 0 {
			wins++
		}
		diffs = append(diffs, d)
		k := float64(len(diffs))
		lossA += (math.Max(-d, 0) - lossA) / k
		lossB += (math.Max(d, 0) - lossB) / k
		meanDiff += d/k - meanDiff/k

		if b == 0 {
			zeroB++
			continue
		}
		lifts = append(lifts, d/b)
	}

	var warnings []bayes.NumericalWarning
	if nonFinite > 0 {
		warnings = append(warnings, bayes.NumericalWarning{
			Code:    bayes.WarningNonFiniteDraws,
			Group:   bayes.GroupBoth,
			Message: fmt.Sprintf("%d of %d draw pairs contained NaN or Inf, or overflowed A-B, and were excluded", nonFinite, n),
		})
	}

	probs := opts.Probabilities()
	used := len(diffs)
	if used == 0 {
		warnings = append(warnings, bayes.NumericalWarning{
			Code:    bayes.WarningZeroLoss,
			Group:   bayes.GroupBoth,
			Message: "no finite draw pairs; all statistics are NaN",
		})
		return bayes.Comparison{Statistics: nanStatistics(opts.CredibleLevel, probs), Warnings: warnings}, nil
	}

	count := float64(used)
	stats := bayes.Statistics{
		ProbAGreaterB: float64(wins) / count,
		ExpectedLossA: lossA,
		ExpectedLossB: lossB,
		MeanDiff:      meanDiff,
		PairsUsed:     used,
	}

	sort.Float64s(diffs)
	stats.DiffQuantiles = quantiles(probs, diffs)
	tail := (1 - opts.CredibleLevel) / 2
	stats.DiffInterval = bayes.CredibleInterval{
		Level:  opts.CredibleLevel,
		Lower:  stat.Quantile(tail, stat.Empirical, diffs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, diffs, nil),
		Upper:  stat.Quantile(1-tail, stat.Empirical, diffs, nil),
	}

	if len(lifts) > 0 {
		sort.Float64s(lifts)
		stats.LiftQuantiles = quantiles(probs, lifts)
	}
	if zeroB > 0 {
		warnings = append(warnings, bayes.NumericalWarning{
			Code:    bayes.WarningUndefinedLift,
			Group:   bayes.GroupB,
			Message: fmt.Sprintf("%d draws of B are zero; lift quantiles use the remaining %d pairs", zeroB, len(lifts)),
		})
	}

	if minA == maxA && minB == maxB {
		warnings = append(warnings, bayes.NumericalWarning{
			Code:    bayes.WarningDegenerateDraws,
			Group:   bayes.GroupBoth,
			Message: fmt.Sprintf("posterior draws have zero spread (A=%g, B=%g)", minA, minB),
		})
	}
	if stats.ExpectedLossA == 0 && stats.ExpectedLossB == 0 {
		warnings = append(warnings, bayes.NumericalWarning{
			Code:    bayes.WarningZeroLoss,
			Group:   bayes.GroupBoth,
			Message: "expected loss is zero for both groups; the draws carry no decision risk information",
		})
	}

	return bayes.Comparison{Statistics: stats, Warnings: warnings}, nil
}

func quantiles(probs, sorted []float64) []bayes.Quantile {
	out := make([]bayes.Quantile, len(probs))
	for i, p := range probs {
		out[i] = bayes.Quantile{Probability: p, Value: stat.Quantile(p, stat.Empirical, sorted, nil)}
	}
	return out
}

func nanStatistics(level float64, probs []float64) bayes.Statistics {
	nan := math.NaN()
	qs := make([]bayes.Quantile, len(probs))
	for i, p := range probs {
		qs[i] = bayes.Quantile{Probability: p, Value: nan}
	}
	return bayes.Statistics{
		ProbAGreaterB: nan,
		ExpectedLossA: nan,
		ExpectedLossB: nan,
		MeanDiff:      nan,
		DiffInterval:  bayes.CredibleInterval{Level: level, Lower: nan, Median: nan, Upper: nan},
		DiffQuantiles: qs,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
