package bayes

import "fmt"

// Simulation count policy
const (
	DefaultSimulationCount  = 100000
	RecommendedMinimumDraws = 1000
)

// Group labels one arm of the comparison
type Group string

const (
	GroupA    Group = "A"
	GroupB    Group = "B"
	GroupBoth Group = "A,B"
)

// WarningCode represents structured numerical warning types
type WarningCode string

const (
	WarningLowSimulationCount WarningCode = "LOW_SIMULATION_COUNT" // fewer draws than RecommendedMinimumDraws
	WarningDegenerateDraws    WarningCode = "DEGENERATE_DRAWS"     // zero spread in every group
	WarningNonFiniteDraws     WarningCode = "NON_FINITE_DRAWS"     // NaN or Inf produced by the sampler
	WarningZeroLoss           WarningCode = "ZERO_EXPECTED_LOSS"   // both losses are 0 or NaN
	WarningUndefinedLift      WarningCode = "UNDEFINED_LIFT"       // some B draws are 0, lift skips them
)

// NumericalWarning is a non-fatal condition that callers must be able to see
type NumericalWarning struct {
	Code    WarningCode `json:"code"`
	Group   Group       `json:"group,omitempty"`
	Message string      `json:"message"`
}

// String formats the warning for logs and summaries
func (w NumericalWarning) String() string {
	if w.Group != "" {
		return fmt.Sprintf("%s [%s]: %s", w.Code, w.Group, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// LowSimulationCountWarning returns the warning for an undersized draw count,
// or false when count meets the recommended minimum.
func LowSimulationCountWarning(count int) (NumericalWarning, bool) {
	if count >= RecommendedMinimumDraws {
		return NumericalWarning{}, false
	}
	return NumericalWarning{
		Code:    WarningLowSimulationCount,
		Group:   GroupBoth,
		Message: fmt.Sprintf("%d draws per group is below the recommended %d; Monte Carlo error is not bounded", count, RecommendedMinimumDraws),
	}, true
}
