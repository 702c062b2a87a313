package bayes

import (
	"fmt"
	"sort"
	"strings"
)

// Params is an immutable set of named distribution parameters
type Params struct {
	values map[string]float64
}

// NewParams copies values into an immutable parameter set
func NewParams(values map[string]float64) Params {
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Params{values: cp}
}

// Get returns the named parameter, or NaN when it is absent
func (p Params) Get(name string) float64 {
	v, ok := p.values[name]
	if !ok {
		return nan()
	}
	return v
}

// Has reports whether the parameter is present
func (p Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Names returns the parameter names sorted alphabetically
func (p Params) Names() []string {
	names := make([]string, 0, len(p.values))
	for k := range p.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the parameters
func (p Params) Map() map[string]float64 {
	cp := make(map[string]float64, len(p.values))
	for k, v := range p.values {
		cp[k] = v
	}
	return cp
}

// Len returns the number of parameters
func (p Params) Len() int {
	return len(p.values)
}

// String renders parameters as name=value pairs in name order
func (p Params) String() string {
	parts := make([]string, 0, len(p.values))
	for _, name := range p.Names() {
		parts = append(parts, fmt.Sprintf("%s=%g", name, p.values[name]))
	}
	return strings.Join(parts, ", ")
}

// PriorSpec is a prior that has been validated against its family's domains
type PriorSpec struct {
	dist   Distribution
	params Params
}

// Distribution returns the family the prior was validated for
func (p PriorSpec) Distribution() Distribution { return p.dist }

// Params returns the prior parameters
func (p PriorSpec) Params() Params { return p.params }

// Param returns a single prior parameter
func (p PriorSpec) Param(name string) float64 { return p.params.Get(name) }

// IsZero reports whether the prior was never validated
func (p PriorSpec) IsZero() bool { return p.dist == "" }

// PosteriorParams is the data-informed counterpart of a PriorSpec
type PosteriorParams struct {
	dist         Distribution
	params       Params
	observations int
}

// Distribution returns the family of the posterior
func (p PosteriorParams) Distribution() Distribution { return p.dist }

// Params returns the posterior parameters
func (p PosteriorParams) Params() Params { return p.params }

// Param returns a single posterior parameter
func (p PosteriorParams) Param(name string) float64 { return p.params.Get(name) }

// Observations returns how many sample values the posterior absorbed
func (p PosteriorParams) Observations() int { return p.observations }

// IsZero reports whether the posterior is unset
func (p PosteriorParams) IsZero() bool { return p.dist == "" }

// NewPosteriorParams builds posterior parameters directly, for callers that
// already hold a conjugate posterior (e.g. from a previous analysis).
func NewPosteriorParams(dist Distribution, values map[string]float64, observations int) (PosteriorParams, error) {
	spec, err := Lookup(dist)
	if err != nil {
		return PosteriorParams{}, err
	}
	params, err := checkParams(spec, values)
	if err != nil {
		return PosteriorParams{}, err
	}
	return PosteriorParams{dist: dist, params: params, observations: observations}, nil
}
