package summary

import (
	"encoding/json"
	"fmt"
	"math"

	"bayesab/domain/bayes"
	"bayesab/domain/core"
)

// Decision is the action recommended for a test
type Decision string

const (
	ChooseA     Decision = "choose_a"
	ChooseB     Decision = "choose_b"
	KeepTesting Decision = "keep_testing"
)

// DecisionPolicy stops a test once one group's expected loss falls below the
// threshold of caring: the largest loss, in units of the compared quantity,
// the caller is willing to accept from picking the wrong group. There is no
// default; the threshold belongs to the caller.
type DecisionPolicy struct {
	ThresholdOfCaring float64 `json:"threshold_of_caring"`
}

// Verdict is a decision together with the numbers that produced it
type Verdict struct {
	Decision      Decision `json:"decision"`
	Threshold     float64  `json:"threshold"`
	ExpectedLossA float64  `json:"expected_loss_a"`
	ExpectedLossB float64  `json:"expected_loss_b"`
	Reason        string   `json:"reason"`
}

// MarshalJSON encodes undefined losses as null
func (v Verdict) MarshalJSON() ([]byte, error) {
	type plain Verdict
	return json.Marshal(struct {
		plain
		ExpectedLossA core.Float `json:"expected_loss_a"`
		ExpectedLossB core.Float `json:"expected_loss_b"`
	}{plain(v), core.Float(v.ExpectedLossA), core.Float(v.ExpectedLossB)})
}

// NewDecisionPolicy validates the threshold
func NewDecisionPolicy(threshold float64) (DecisionPolicy, error) {
	p := DecisionPolicy{ThresholdOfCaring: threshold}
	if err := p.Validate(); err != nil {
		return DecisionPolicy{}, err
	}
	return p, nil
}

// Validate requires a finite, strictly positive threshold
func (p DecisionPolicy) Validate() error {
	t := p.ThresholdOfCaring
	if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
		return core.NewValidationError(core.ErrInvalidThreshold, "threshold_of_caring", fmt.Sprintf("%g, must be a positive finite number", t))
	}
	return nil
}

// Decide picks the group whose expected loss is below the threshold. When both
// qualify the smaller loss wins; NaN losses never qualify.
func (p DecisionPolicy) Decide(result *bayes.TestResult) (Verdict, error) {
	if err := p.Validate(); err != nil {
		return Verdict{}, err
	}
	if result == nil {
		return Verdict{}, core.NewStructuralError(core.ErrMissingPosterior, "no test result to decide on")
	}

	lossA, lossB := result.ExpectedLossA(), result.ExpectedLossB()
	v := Verdict{
		Threshold:     p.ThresholdOfCaring,
		ExpectedLossA: lossA,
		ExpectedLossB: lossB,
	}

	okA := lossA < p.ThresholdOfCaring
	okB := lossB < p.ThresholdOfCaring
	switch {
	case okA && (!okB || lossA <= lossB):
		v.Decision = ChooseA
		v.Reason = fmt.Sprintf("expected loss of A (%.6g) is below %g", lossA, p.ThresholdOfCaring)
	case okB:
		v.Decision = ChooseB
		v.Reason = fmt.Sprintf("expected loss of B (%.6g) is below %g", lossB, p.ThresholdOfCaring)
	case math.IsNaN(lossA) || math.IsNaN(lossB):
		v.Decision = KeepTesting
		v.Reason = "expected loss is undefined"
	default:
		v.Decision = KeepTesting
		v.Reason = fmt.Sprintf("both expected losses are at or above %g", p.ThresholdOfCaring)
	}
	return v, nil
}
