package summary

import (
	"encoding/json"
	"fmt"
	"strings"

	"bayesab/domain/bayes"
	"bayesab/domain/core"
)

// Summary is a plain-data digest of a TestResult for reports and logs
type Summary struct {
	ID              core.TestID            `json:"id"`
	Distribution    bayes.Distribution     `json:"distribution"`
	Prior           string                 `json:"prior"`
	PosteriorA      string                 `json:"posterior_a"`
	PosteriorB      string                 `json:"posterior_b"`
	SimulationCount int                    `json:"simulation_count"`
	Seed            uint64                 `json:"seed"`
	Fingerprint     core.Hash              `json:"fingerprint,omitempty"`
	ProbAGreaterB   float64                `json:"prob_a_gt_b"`
	ExpectedLossA   float64                `json:"expected_loss_a"`
	ExpectedLossB   float64                `json:"expected_loss_b"`
	Interval        bayes.CredibleInterval `json:"interval"`
	LiftQuantiles   []bayes.Quantile       `json:"lift_quantiles,omitempty"`
	DrawsA          DrawSummary            `json:"draws_a"`
	DrawsB          DrawSummary            `json:"draws_b"`
	Warnings        []string               `json:"warnings,omitempty"`
	Verdict         *Verdict               `json:"verdict,omitempty"`
}

// MarshalJSON encodes undefined statistics as null
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		ProbAGreaterB core.Float `json:"prob_a_gt_b"`
		ExpectedLossA core.Float `json:"expected_loss_a"`
		ExpectedLossB core.Float `json:"expected_loss_b"`
	}{plain(s), core.Float(s.ProbAGreaterB), core.Float(s.ExpectedLossA), core.Float(s.ExpectedLossB)})
}

// Summarize digests a result. It only reads the result.
func Summarize(result *bayes.TestResult) (Summary, error) {
	if result == nil {
		return Summary{}, core.NewStructuralError(core.ErrMissingPosterior, "no test result to summarize")
	}

	drawsA, err := describe(result.DrawsA())
	if err != nil {
		return Summary{}, fmt.Errorf("describing draws of A: %w", err)
	}
	drawsB, err := describe(result.DrawsB())
	if err != nil {
		return Summary{}, fmt.Errorf("describing draws of B: %w", err)
	}

	stats := result.Statistics()
	s := Summary{
		ID:              result.ID(),
		Distribution:    result.Distribution(),
		Prior:           result.Prior().Params().String(),
		PosteriorA:      result.PosteriorA().Params().String(),
		PosteriorB:      result.PosteriorB().Params().String(),
		SimulationCount: result.SimulationCount(),
		Seed:            result.Seed(),
		Fingerprint:     result.Fingerprint(),
		ProbAGreaterB:   stats.ProbAGreaterB,
		ExpectedLossA:   stats.ExpectedLossA,
		ExpectedLossB:   stats.ExpectedLossB,
		Interval:        stats.DiffInterval,
		LiftQuantiles:   stats.LiftQuantiles,
		DrawsA:          drawsA,
		DrawsB:          drawsB,
	}
	for _, w := range result.Warnings() {
		s.Warnings = append(s.Warnings, w.String())
	}
	return s, nil
}

// SummarizeWithPolicy digests a result and attaches the policy's verdict
func SummarizeWithPolicy(result *bayes.TestResult, policy DecisionPolicy) (Summary, error) {
	s, err := Summarize(result)
	if err != nil {
		return Summary{}, err
	}
	v, err := policy.Decide(result)
	if err != nil {
		return Summary{}, err
	}
	s.Verdict = &v
	return s, nil
}

// String renders the summary as an aligned text block
func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Bayesian A/B test %s (%s)\n", s.ID, s.Distribution)
	fmt.Fprintf(&b, "  prior:          %s\n", s.Prior)
	fmt.Fprintf(&b, "  posterior A:    %s\n", s.PosteriorA)
	fmt.Fprintf(&b, "  posterior B:    %s\n", s.PosteriorB)
	fmt.Fprintf(&b, "  draws:          %d per group (seed %d)\n", s.SimulationCount, s.Seed)
	if !s.Fingerprint.IsEmpty() {
		fmt.Fprintf(&b, "  fingerprint:    %s\n", s.Fingerprint)
	}
	fmt.Fprintf(&b, "  P(A > B):       %.4f\n", s.ProbAGreaterB)
	fmt.Fprintf(&b, "  loss if A:      %.6g\n", s.ExpectedLossA)
	fmt.Fprintf(&b, "  loss if B:      %.6g\n", s.ExpectedLossB)
	fmt.Fprintf(&b, "  A - B:          median %.6g, %.0f%% interval [%.6g, %.6g]\n",
		s.Interval.Median, s.Interval.Level*100, s.Interval.Lower, s.Interval.Upper)
	if len(s.LiftQuantiles) > 0 {
		parts := make([]string, len(s.LiftQuantiles))
		for i, q := range s.LiftQuantiles {
			parts[i] = fmt.Sprintf("q%g=%.4g", q.Probability*100, q.Value)
		}
		fmt.Fprintf(&b, "  lift (A-B)/B:   %s\n", strings.Join(parts, " "))
	}
	fmt.Fprintf(&b, "  A draws:        mean %.6g, sd %.6g, IQR [%.6g, %.6g]\n", s.DrawsA.Mean, s.DrawsA.StdDev, s.DrawsA.Q25, s.DrawsA.Q75)
	fmt.Fprintf(&b, "  B draws:        mean %.6g, sd %.6g, IQR [%.6g, %.6g]\n", s.DrawsB.Mean, s.DrawsB.StdDev, s.DrawsB.Q25, s.DrawsB.Q75)
	if s.Verdict != nil {
		fmt.Fprintf(&b, "  decision:       %s (%s)\n", s.Verdict.Decision, s.Verdict.Reason)
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "  warning:        %s\n", w)
	}
	return b.String()
}
