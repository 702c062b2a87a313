package bayes

import (
	"fmt"
	"strings"

	"bayesab/domain/core"
)

// Distribution identifies a supported likelihood family
type Distribution string

const (
	Bernoulli   Distribution = "bernoulli"
	Poisson     Distribution = "poisson"
	Normal      Distribution = "normal"
	LogNormal   Distribution = "lognormal"
	Exponential Distribution = "exponential"
	Geometric   Distribution = "geometric"
	Uniform     Distribution = "uniform"
)

// String returns the distribution tag
func (d Distribution) String() string {
	return string(d)
}

// ParseDistribution resolves a case-insensitive tag to a registered family
func ParseDistribution(s string) (Distribution, error) {
	d := Distribution(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[d]; !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownDistribution, s)
	}
	return d, nil
}

// ParamDomain constrains the admissible values of a prior parameter
type ParamDomain int

const (
	DomainPositive ParamDomain = iota // strictly greater than zero
	DomainReal                        // any finite value
)

// String returns a human-readable description of the domain
func (d ParamDomain) String() string {
	switch d {
	case DomainPositive:
		return "positive real"
	case DomainReal:
		return "finite real"
	default:
		return "unknown"
	}
}

// Contains reports whether v lies inside the domain
func (d ParamDomain) Contains(v float64) bool {
	if !isFinite(v) {
		return false
	}
	switch d {
	case DomainPositive:
		return v > 0
	case DomainReal:
		return true
	default:
		return false
	}
}

// ParamDef declares one prior parameter of a family
type ParamDef struct {
	Name   string
	Domain ParamDomain
}

// PosteriorForm names the closed-form family the posterior belongs to, which
// in turn decides how Monte Carlo draws are produced.
type PosteriorForm string

const (
	FormBeta                  PosteriorForm = "beta"
	FormGamma                 PosteriorForm = "gamma"
	FormNormalInverseGamma    PosteriorForm = "normal-inverse-gamma"
	FormLogNormalInverseGamma PosteriorForm = "lognormal-inverse-gamma"
	FormPareto                PosteriorForm = "pareto"
)

// DistributionSpec carries everything the engine knows about one family.
// Update must be pure: the same prior and sample always give the same posterior.
type DistributionSpec struct {
	Tag         Distribution
	Params      []ParamDef
	Support     string
	InSupport   func(x float64) bool
	Form        PosteriorForm
	Update      func(prior Params, sample []float64) Params
	Description string
}

// ParamNames returns the declared prior parameter names in order
func (s DistributionSpec) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}
