package comparison

import (
	"math"
	"math/rand/v2"
	"testing"

	"bayesab/adapters/stats/posterior"
	"bayesab/domain/bayes"
	"bayesab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func hasWarning(c bayes.Comparison, code bayes.WarningCode) bool {
	for _, w := range c.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestCompare_HandComputed(t *testing.T) {
	engine := NewEngine()

	c, err := engine.Compare([]float64{1, 2, 3}, []float64{2, 2, 1}, bayes.DefaultCompareOptions())
	require.NoError(t, err)

	s := c.Statistics
	assert.InDelta(t, 1.0/3, s.ProbAGreaterB, 1e-12)
	assert.InDelta(t, 1.0/3, s.ExpectedLossA, 1e-12, "A loses 1 in one of three pairs")
	assert.InDelta(t, 2.0/3, s.ExpectedLossB, 1e-12, "B loses 2 in one of three pairs")
	assert.InDelta(t, 1.0/3, s.MeanDiff, 1e-12)
	assert.Equal(t, 3, s.PairsUsed)
	assert.Equal(t, 0.0, s.DiffInterval.Median)
	assert.Equal(t, 0.95, s.DiffInterval.Level)
	assert.Len(t, s.DiffQuantiles, 3)
	assert.Empty(t, c.Warnings)
}

func TestCompare_ExtraQuantiles(t *testing.T) {
	engine := NewEngine()
	a := []float64{5, 6, 7, 8, 9}
	b := []float64{1, 1, 1, 1, 1}

	c, err := engine.Compare(a, b, bayes.CompareOptions{CredibleLevel: 0.9, Quantiles: []float64{0.25, 0.5, 0.75}})
	require.NoError(t, err)

	probs := make([]float64, len(c.Statistics.DiffQuantiles))
	for i, q := range c.Statistics.DiffQuantiles {
		probs[i] = q.Probability
	}
	assert.InDeltaSlice(t, []float64{0.05, 0.25, 0.5, 0.75, 0.95}, probs, 1e-12)
	assert.Len(t, c.Statistics.LiftQuantiles, 5)
	assert.Equal(t, 1.0, c.Statistics.ProbAGreaterB)
	assert.Equal(t, 0.0, c.Statistics.ExpectedLossA)
}

func TestCompare_BetaUniformConvergesToHalf(t *testing.T) {
	sampler := posterior.NewSampler()
	engine := NewEngine()

	post, err := bayes.NewPosteriorParams(bayes.Bernoulli, map[string]float64{"alpha": 1, "beta": 1}, 0)
	require.NoError(t, err)

	a, err := sampler.Sample(post, 100000, rand.NewPCG(101, 1))
	require.NoError(t, err)
	b, err := sampler.Sample(post, 100000, rand.NewPCG(101, 2))
	require.NoError(t, err)

	c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, c.Statistics.ProbAGreaterB, 0.02)
	// E[max(B-A,0)] for two independent U(0,1) is 1/6
	assert.InDelta(t, 1.0/6, c.Statistics.ExpectedLossA, 0.005)
	assert.InDelta(t, 1.0/6, c.Statistics.ExpectedLossB, 0.005)
	assert.InDelta(t, 0.0, c.Statistics.DiffInterval.Median, 0.01)
}

func TestCompare_Symmetry(t *testing.T) {
	engine := NewEngine()

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 300).Draw(rt, "n")
		a := rapid.SliceOfN(rapid.Float64Range(-10, 10), n, n).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Float64Range(-10, 10), n, n).Draw(rt, "b")

		ab, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(rt, err)
		ba, err := engine.Compare(b, a, bayes.DefaultCompareOptions())
		require.NoError(rt, err)

		ties := 0
		for i := range a {
			if a[i] == b[i] {
				ties++
			}
		}
		tieRate := float64(ties) / float64(n)

		assert.InDelta(rt, 1-tieRate, ab.Statistics.ProbAGreaterB+ba.Statistics.ProbAGreaterB, 1e-9)
		assert.InDelta(rt, ab.Statistics.ExpectedLossA, ba.Statistics.ExpectedLossB, 1e-9)
		assert.InDelta(rt, ab.Statistics.ExpectedLossB, ba.Statistics.ExpectedLossA, 1e-9)
		assert.InDelta(rt, ab.Statistics.MeanDiff, -ba.Statistics.MeanDiff, 1e-9)
	})
}

func TestCompare_LossIdentity(t *testing.T) {
	engine := NewEngine()

	// loss_A - loss_B = E[B - A] for every paired sample
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(rt, "n")
		a := rapid.SliceOfN(rapid.Float64Range(0, 5), n, n).Draw(rt, "a")
		b := rapid.SliceOfN(rapid.Float64Range(0, 5), n, n).Draw(rt, "b")

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(rt, err)

		s := c.Statistics
		assert.GreaterOrEqual(rt, s.ExpectedLossA, 0.0)
		assert.GreaterOrEqual(rt, s.ExpectedLossB, 0.0)
		assert.InDelta(rt, -s.MeanDiff, s.ExpectedLossA-s.ExpectedLossB, 1e-9)
	})
}

func TestCompare_DegenerateWinnerHasZeroLoss(t *testing.T) {
	engine := NewEngine()
	a := make([]float64, 1000)
	b := make([]float64, 1000)
	for i := range a {
		a[i] = 0.6
		b[i] = 0.4
	}

	c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, c.Statistics.ExpectedLossA, "winning group must have exactly zero loss")
	assert.InDelta(t, 0.2, c.Statistics.ExpectedLossB, 1e-12)
	assert.Equal(t, 1.0, c.Statistics.ProbAGreaterB)
	assert.True(t, hasWarning(c, bayes.WarningDegenerateDraws))
	assert.False(t, hasWarning(c, bayes.WarningZeroLoss))
}

func TestCompare_AllZeroDraws(t *testing.T) {
	engine := NewEngine()
	zeros := make([]float64, 500)

	c, err := engine.Compare(zeros, zeros, bayes.DefaultCompareOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, c.Statistics.ExpectedLossA)
	assert.Equal(t, 0.0, c.Statistics.ExpectedLossB)
	assert.Equal(t, 0.0, c.Statistics.ProbAGreaterB)
	assert.True(t, hasWarning(c, bayes.WarningDegenerateDraws))
	assert.True(t, hasWarning(c, bayes.WarningZeroLoss))
	assert.True(t, hasWarning(c, bayes.WarningUndefinedLift))
	assert.Empty(t, c.Statistics.LiftQuantiles)
}

func TestCompare_NonFiniteDraws(t *testing.T) {
	engine := NewEngine()

	t.Run("partial", func(t *testing.T) {
		a := []float64{1, math.NaN(), 3, math.Inf(1)}
		b := []float64{0, 1, 4, 1}

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(t, err)

		assert.Equal(t, 2, c.Statistics.PairsUsed)
		assert.Equal(t, 0.5, c.Statistics.ProbAGreaterB)
		assert.True(t, hasWarning(c, bayes.WarningNonFiniteDraws))
	})

	t.Run("all", func(t *testing.T) {
		a := []float64{math.NaN(), math.NaN()}
		b := []float64{1, 2}

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(t, err)

		assert.True(t, math.IsNaN(c.Statistics.ProbAGreaterB))
		assert.True(t, math.IsNaN(c.Statistics.ExpectedLossA))
		assert.True(t, math.IsNaN(c.Statistics.ExpectedLossB))
		assert.True(t, math.IsNaN(c.Statistics.DiffInterval.Lower))
		assert.Equal(t, 0, c.Statistics.PairsUsed)
		assert.True(t, hasWarning(c, bayes.WarningNonFiniteDraws))
		assert.True(t, hasWarning(c, bayes.WarningZeroLoss))
	})
}

func TestCompare_DrawsNearFloatLimit(t *testing.T) {
	engine := NewEngine()

	t.Run("losses stay finite", func(t *testing.T) {
		a := []float64{1.7e308, 1.7e308, 1.7e308}
		b := []float64{1e307, 1e307, 1e307}

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(t, err)

		s := c.Statistics
		assert.Equal(t, 0.0, s.ExpectedLossA)
		assert.False(t, math.IsInf(s.ExpectedLossB, 0))
		assert.InEpsilon(t, 1.6e308, s.ExpectedLossB, 1e-12)
		assert.InEpsilon(t, 1.6e308, s.MeanDiff, 1e-12)
		assert.InEpsilon(t, 1.6e308, s.DiffInterval.Median, 1e-12)
		assert.Equal(t, 3, s.PairsUsed)
		assert.False(t, hasWarning(c, bayes.WarningNonFiniteDraws))
	})

	t.Run("mixed signs keep the mean finite", func(t *testing.T) {
		a := []float64{1e308, -1e308, 1e308, -1e308}
		b := []float64{-5e307, 5e307, -5e307, 5e307}

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(t, err)

		s := c.Statistics
		assert.InDelta(t, 0.0, s.MeanDiff, 1e295)
		assert.InEpsilon(t, 5.25e307, s.ExpectedLossA, 1e-12)
		assert.InEpsilon(t, 5.25e307, s.ExpectedLossB, 1e-12)
	})

	t.Run("overflowing difference is excluded", func(t *testing.T) {
		a := []float64{1.7e308, 2}
		b := []float64{-1.7e308, 1}

		c, err := engine.Compare(a, b, bayes.DefaultCompareOptions())
		require.NoError(t, err)

		assert.Equal(t, 1, c.Statistics.PairsUsed)
		assert.Equal(t, 1.0, c.Statistics.MeanDiff)
		assert.True(t, hasWarning(c, bayes.WarningNonFiniteDraws))
	})
}

func TestCompare_StructuralErrors(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Compare(nil, nil, bayes.DefaultCompareOptions())
	assert.ErrorIs(t, err, core.ErrEmptyDraws)
	assert.True(t, core.IsStructuralError(err))

	_, err = engine.Compare([]float64{1, 2}, []float64{1}, bayes.DefaultCompareOptions())
	assert.ErrorIs(t, err, core.ErrDrawLengthMismatch)

	_, err = engine.Compare([]float64{1}, []float64{1}, bayes.CompareOptions{CredibleLevel: 1.5})
	assert.ErrorIs(t, err, core.ErrInvalidQuantile)

	_, err = engine.Compare([]float64{1}, []float64{1}, bayes.CompareOptions{CredibleLevel: 0.9, Quantiles: []float64{0}})
	assert.ErrorIs(t, err, core.ErrInvalidQuantile)
}

func TestCompare_ZeroOptionsUseDefaults(t *testing.T) {
	engine := NewEngine()

	c, err := engine.Compare([]float64{1, 2}, []float64{0, 0.5}, bayes.CompareOptions{})
	require.NoError(t, err)
	assert.Equal(t, bayes.DefaultCredibleLevel, c.Statistics.DiffInterval.Level)
}
