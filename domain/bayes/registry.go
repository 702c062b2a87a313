package bayes

import (
	"fmt"
	"sort"

	"bayesab/domain/core"
)

var normalParams = []ParamDef{
	{Name: ParamMu, Domain: DomainReal},
	{Name: ParamLambda, Domain: DomainPositive},
	{Name: ParamAlpha, Domain: DomainPositive},
	{Name: ParamBeta, Domain: DomainPositive},
}

// registry is the closed set of supported families. It is never mutated
// after package initialisation.
var registry = map[Distribution]DistributionSpec{
	Bernoulli: {
		Tag: Bernoulli,
		Params: []ParamDef{
			{Name: ParamAlpha, Domain: DomainPositive},
			{Name: ParamBeta, Domain: DomainPositive},
		},
		Support:     "values in {0,1}",
		InSupport:   isBinary,
		Form:        FormBeta,
		Update:      updateBetaBernoulli,
		Description: "Bernoulli likelihood with Beta prior on the success probability",
	},
	Poisson: {
		Tag: Poisson,
		Params: []ParamDef{
			{Name: ParamShape, Domain: DomainPositive},
			{Name: ParamRate, Domain: DomainPositive},
		},
		Support:     "non-negative integers",
		InSupport:   isCount,
		Form:        FormGamma,
		Update:      updateGammaPoisson,
		Description: "Poisson likelihood with Gamma prior on lambda",
	},
	Normal: {
		Tag:         Normal,
		Params:      normalParams,
		Support:     "finite real values",
		InSupport:   isFinite,
		Form:        FormNormalInverseGamma,
		Update:      updateNormalInverseGamma,
		Description: "Normal likelihood with Normal-Inverse-Gamma prior on mean and variance",
	},
	LogNormal: {
		Tag:         LogNormal,
		Params:      normalParams,
		Support:     "strictly positive values",
		InSupport:   isPositive,
		Form:        FormLogNormalInverseGamma,
		Update:      updateLogNormalInverseGamma,
		Description: "Log-normal likelihood with Normal-Inverse-Gamma prior on the log scale",
	},
	Exponential: {
		Tag: Exponential,
		Params: []ParamDef{
			{Name: ParamShape, Domain: DomainPositive},
			{Name: ParamRate, Domain: DomainPositive},
		},
		Support:     "non-negative values",
		InSupport:   isNonNegative,
		Form:        FormGamma,
		Update:      updateGammaExponential,
		Description: "Exponential likelihood with Gamma prior on the rate",
	},
	Geometric: {
		Tag: Geometric,
		Params: []ParamDef{
			{Name: ParamAlpha, Domain: DomainPositive},
			{Name: ParamBeta, Domain: DomainPositive},
		},
		Support:     "non-negative integers",
		InSupport:   isCount,
		Form:        FormBeta,
		Update:      updateBetaGeometric,
		Description: "Geometric likelihood (failures before success) with Beta prior on p",
	},
	Uniform: {
		Tag: Uniform,
		Params: []ParamDef{
			{Name: ParamXm, Domain: DomainPositive},
			{Name: ParamAlpha, Domain: DomainPositive},
		},
		Support:     "non-negative values",
		InSupport:   isNonNegative,
		Form:        FormPareto,
		Update:      updateParetoUniform,
		Description: "Uniform(0, theta) likelihood with Pareto prior on theta",
	},
}

// Lookup returns the spec registered for a family
func Lookup(d Distribution) (DistributionSpec, error) {
	spec, ok := registry[d]
	if !ok {
		return DistributionSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownDistribution, string(d))
	}
	return spec, nil
}

// Families lists every registered family in tag order
func Families() []Distribution {
	out := make([]Distribution, 0, len(registry))
	for d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks a raw prior map against the family's declared parameters
func Validate(d Distribution, priors map[string]float64) (PriorSpec, error) {
	spec, err := Lookup(d)
	if err != nil {
		return PriorSpec{}, err
	}
	params, err := checkParams(spec, priors)
	if err != nil {
		return PriorSpec{}, err
	}
	return PriorSpec{dist: d, params: params}, nil
}

// ValidateSample checks a sample is non-empty and inside the family's support
func ValidateSample(d Distribution, sample []float64) error {
	spec, err := Lookup(d)
	if err != nil {
		return err
	}
	return checkSample(spec, sample)
}

// Update applies the family's conjugate rule to a validated prior
func Update(prior PriorSpec, sample []float64) (PosteriorParams, error) {
	if prior.IsZero() {
		return PosteriorParams{}, core.NewValidationError(core.ErrMissingPrior, "prior", "prior has not been validated")
	}
	spec, err := Lookup(prior.dist)
	if err != nil {
		return PosteriorParams{}, err
	}
	if err := checkSample(spec, sample); err != nil {
		return PosteriorParams{}, err
	}

	return PosteriorParams{
		dist:         prior.dist,
		params:       spec.Update(prior.params, sample),
		observations: len(sample),
	}, nil
}

func checkParams(spec DistributionSpec, values map[string]float64) (Params, error) {
	for _, def := range spec.Params {
		v, ok := values[def.Name]
		if !ok {
			return Params{}, core.NewValidationError(core.ErrMissingPrior, def.Name,
				fmt.Sprintf("%s requires parameters %v", spec.Tag, spec.ParamNames()))
		}
		if !def.Domain.Contains(v) {
			return Params{}, core.NewValidationError(core.ErrInvalidPriorDomain, def.Name,
				fmt.Sprintf("%g is not a %s", v, def.Domain))
		}
	}
	if len(values) != len(spec.Params) {
		declared := make(map[string]bool, len(spec.Params))
		for _, def := range spec.Params {
			declared[def.Name] = true
		}
		for name := range values {
			if !declared[name] {
				return Params{}, core.NewValidationError(core.ErrUnexpectedPrior, name,
					fmt.Sprintf("%s accepts only %v", spec.Tag, spec.ParamNames()))
			}
		}
	}
	return NewParams(values), nil
}

// n = 0 is rejected: the posterior would silently equal the prior
func checkSample(spec DistributionSpec, sample []float64) error {
	if len(sample) == 0 {
		return core.NewValidationError(core.ErrInsufficientData, "sample", "at least one observation is required")
	}
	for i, x := range sample {
		if !spec.InSupport(x) {
			return core.NewSupportError(string(spec.Tag), i, x, spec.Support)
		}
	}
	return nil
}
