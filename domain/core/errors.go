package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors terminate a test before any posterior is computed
	ErrValidation          = errors.New("validation failed")
	ErrUnknownDistribution = fmt.Errorf("%w: unknown distribution", ErrValidation)
	ErrInvalidPriorDomain  = fmt.Errorf("%w: invalid prior domain", ErrValidation)
	ErrMissingPrior        = fmt.Errorf("%w: missing prior parameter", ErrValidation)
	ErrUnexpectedPrior     = fmt.Errorf("%w: unexpected prior parameter", ErrValidation)
	ErrSampleSupport       = fmt.Errorf("%w: sample violates distribution support", ErrValidation)
	ErrInsufficientData    = fmt.Errorf("%w: insufficient data", ErrValidation)
	ErrSimulationCount     = fmt.Errorf("%w: invalid simulation count", ErrValidation)
	ErrInvalidQuantile     = fmt.Errorf("%w: quantile outside (0,1)", ErrValidation)
	ErrInvalidScenario     = fmt.Errorf("%w: invalid scenario", ErrValidation)
	ErrInvalidThreshold    = fmt.Errorf("%w: invalid threshold of caring", ErrValidation)

	// Structural errors mean a result could not be assembled consistently
	ErrStructural         = errors.New("structural invariant violated")
	ErrDrawLengthMismatch = fmt.Errorf("%w: draw length mismatch", ErrStructural)
	ErrEmptyDraws         = fmt.Errorf("%w: empty draws", ErrStructural)
	ErrMissingPosterior   = fmt.Errorf("%w: missing posterior", ErrStructural)
	ErrFamilyMismatch     = fmt.Errorf("%w: distribution family mismatch", ErrStructural)
)

// Error constructors with context
func NewValidationError(kind error, field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", kind, field, reason)
}

func NewSupportError(dist string, index int, value float64, support string) error {
	return fmt.Errorf("%w: %s sample[%d]=%g, expected %s", ErrSampleSupport, dist, index, value, support)
}

func NewStructuralError(kind error, reason string) error {
	return fmt.Errorf("%w: %s", kind, reason)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsStructuralError(err error) bool {
	return errors.Is(err, ErrStructural)
}
