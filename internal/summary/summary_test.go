package summary

import (
	"encoding/json"
	"math"
	"testing"

	"bayesab/adapters/stats/comparison"
	"bayesab/domain/bayes"
	"bayesab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildResult(t *testing.T, drawsA, drawsB []float64) *bayes.TestResult {
	t.Helper()
	prior, err := bayes.Validate(bayes.Bernoulli, map[string]float64{"alpha": 1, "beta": 1})
	require.NoError(t, err)
	postA, err := bayes.Update(prior, []float64{1, 1, 1, 0})
	require.NoError(t, err)
	postB, err := bayes.Update(prior, []float64{1, 0, 0, 0})
	require.NoError(t, err)

	cmp, err := comparison.NewEngine().Compare(drawsA, drawsB, bayes.CompareOptions{CredibleLevel: 0.9, Quantiles: []float64{0.5}})
	require.NoError(t, err)

	result, err := bayes.NewTestResult(bayes.ResultInput{
		Prior:       prior,
		PosteriorA:  postA,
		PosteriorB:  postB,
		DrawsA:      drawsA,
		DrawsB:      drawsB,
		Statistics:  cmp.Statistics,
		Warnings:    cmp.Warnings,
		Seed:        42,
		Fingerprint: core.NewHash([]byte("summary-test")),
	})
	require.NoError(t, err)
	return result
}

func TestSummarize(t *testing.T) {
	result := buildResult(t, []float64{0.5, 0.6, 0.7, 0.8}, []float64{0.2, 0.3, 0.4, 0.9})

	s, err := Summarize(result)
	require.NoError(t, err)

	assert.Equal(t, result.ID(), s.ID)
	assert.Equal(t, "alpha=4, beta=2", s.PosteriorA)
	assert.Equal(t, 4, s.SimulationCount)
	assert.Equal(t, 0.75, s.ProbAGreaterB)
	assert.Equal(t, 4, s.DrawsA.Count)
	assert.InDelta(t, 0.65, s.DrawsA.Mean, 1e-12)
	assert.InDelta(t, 0.5, s.DrawsA.Min, 1e-12)
	assert.InDelta(t, 0.9, s.DrawsB.Max, 1e-12)
	assert.InDelta(t, 0.35, s.DrawsB.Median, 1e-12)
	assert.Nil(t, s.Verdict)

	text := s.String()
	assert.Contains(t, text, "P(A > B):       0.7500")
	assert.Contains(t, text, "90% interval")
	assert.Contains(t, text, "seed 42")
	assert.Contains(t, text, "fingerprint:    "+result.Fingerprint().String())
	assert.NotContains(t, text, "decision:")
}

func TestSummarize_DoesNotMutateResult(t *testing.T) {
	result := buildResult(t, []float64{0.9, 0.1, 0.5}, []float64{0.3, 0.2, 0.1})

	_, err := Summarize(result)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, result.DrawsA())
}

func TestSummarize_NonFiniteDraws(t *testing.T) {
	nan := math.NaN()
	result := buildResult(t, []float64{nan, nan}, []float64{nan, nan})

	s, err := Summarize(result)
	require.NoError(t, err)
	assert.Equal(t, 0, s.DrawsA.Count)
	assert.True(t, math.IsNaN(s.DrawsA.Mean))
	assert.True(t, math.IsNaN(s.ProbAGreaterB))
	assert.NotEmpty(t, s.Warnings)
	assert.Contains(t, s.String(), "warning:")
}

func TestSummarizeWithPolicy_JSONWithNonFiniteDraws(t *testing.T) {
	nan := math.NaN()
	result := buildResult(t, []float64{nan, math.Inf(1)}, []float64{nan, 1})

	policy, err := NewDecisionPolicy(0.01)
	require.NoError(t, err)
	s, err := SummarizeWithPolicy(result, policy)
	require.NoError(t, err)
	require.NotNil(t, s.Verdict)
	assert.Equal(t, KeepTesting, s.Verdict.Decision)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Nil(t, doc["prob_a_gt_b"])
	assert.Nil(t, doc["expected_loss_a"])

	drawsA := doc["draws_a"].(map[string]any)
	assert.Nil(t, drawsA["mean"])
	assert.Equal(t, 0.0, drawsA["count"])

	drawsB := doc["draws_b"].(map[string]any)
	assert.Equal(t, 1.0, drawsB["mean"])

	verdict := doc["verdict"].(map[string]any)
	assert.Nil(t, verdict["expected_loss_b"])
	assert.Equal(t, 0.01, verdict["threshold"])
	assert.Equal(t, "keep_testing", verdict["decision"])
}

func TestSummarize_NilResult(t *testing.T) {
	_, err := Summarize(nil)
	assert.True(t, core.IsStructuralError(err))
}

func TestDecisionPolicy_Decide(t *testing.T) {
	tests := []struct {
		name      string
		drawsA    []float64
		drawsB    []float64
		threshold float64
		want      Decision
	}{
		{"degenerate winner A", []float64{0.5, 0.5, 0.5}, []float64{0.3, 0.3, 0.3}, 0.01, ChooseA},
		{"degenerate winner B", []float64{0.1, 0.1}, []float64{0.2, 0.2}, 0.01, ChooseB},
		{"overlapping groups keep testing", []float64{0.1, 0.9, 0.5, 0.3}, []float64{0.8, 0.2, 0.4, 0.6}, 0.01, KeepTesting},
		{"both below threshold picks smaller loss", []float64{0.52, 0.50}, []float64{0.50, 0.51}, 0.5, ChooseA},
		{"undefined loss keeps testing", []float64{math.NaN()}, []float64{math.NaN()}, 0.01, KeepTesting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := NewDecisionPolicy(tt.threshold)
			require.NoError(t, err)

			v, err := policy.Decide(buildResult(t, tt.drawsA, tt.drawsB))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Decision)
			assert.Equal(t, tt.threshold, v.Threshold)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestDecisionPolicy_DegenerateWinnerHasZeroLoss(t *testing.T) {
	policy, err := NewDecisionPolicy(1e-9)
	require.NoError(t, err)

	v, err := policy.Decide(buildResult(t, []float64{2, 2, 2}, []float64{1, 1, 1}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.ExpectedLossA)
	assert.Equal(t, ChooseA, v.Decision)
}

func TestDecisionPolicy_InvalidThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := NewDecisionPolicy(threshold)
		assert.ErrorIs(t, err, core.ErrInvalidThreshold, "threshold %g", threshold)
	}

	_, err := DecisionPolicy{}.Decide(nil)
	assert.ErrorIs(t, err, core.ErrInvalidThreshold)
}

func TestSummarizeWithPolicy(t *testing.T) {
	result := buildResult(t, []float64{0.5, 0.5}, []float64{0.3, 0.3})

	s, err := SummarizeWithPolicy(result, DecisionPolicy{ThresholdOfCaring: 0.001})
	require.NoError(t, err)
	require.NotNil(t, s.Verdict)
	assert.Equal(t, ChooseA, s.Verdict.Decision)
	assert.Contains(t, s.String(), "decision:       choose_a")
}
