package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"bayesab/domain/bayes"
	"bayesab/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Ground-truth parameter names used by the generators
const (
	TruthP      = "p"      // bernoulli, geometric
	TruthLambda = "lambda" // poisson
	TruthMu     = "mu"     // normal, lognormal (log scale)
	TruthSigma  = "sigma"  // normal, lognormal (log scale)
	TruthRate   = "rate"   // exponential
	TruthTheta  = "theta"  // uniform upper bound
)

var truthParams = map[bayes.Distribution][]string{
	bayes.Bernoulli:   {TruthP},
	bayes.Poisson:     {TruthLambda},
	bayes.Normal:      {TruthMu, TruthSigma},
	bayes.LogNormal:   {TruthMu, TruthSigma},
	bayes.Exponential: {TruthRate},
	bayes.Geometric:   {TruthP},
	bayes.Uniform:     {TruthTheta},
}

// TruthParamNames lists the ground-truth parameters a family's generator needs
func TruthParamNames(d bayes.Distribution) []string {
	return append([]string(nil), truthParams[d]...)
}

// SampleConfig describes one synthetic sample
type SampleConfig struct {
	Distribution bayes.Distribution `json:"distribution"`
	Truth        map[string]float64 `json:"truth"`
	Size         int                `json:"size"`
}

// Validate checks the family is known, the size is positive and the truth
// parameters are exactly the ones the family needs.
func (c SampleConfig) Validate() error {
	names, ok := truthParams[c.Distribution]
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownDistribution, string(c.Distribution))
	}
	if c.Size < 1 {
		return core.NewValidationError(core.ErrInvalidScenario, "size", fmt.Sprintf("%d, must be >= 1", c.Size))
	}
	if len(c.Truth) != len(names) {
		got := make([]string, 0, len(c.Truth))
		for k := range c.Truth {
			got = append(got, k)
		}
		sort.Strings(got)
		return core.NewValidationError(core.ErrInvalidScenario, "truth",
			fmt.Sprintf("%s needs %v, got %v", c.Distribution, names, got))
	}
	for _, name := range names {
		v, ok := c.Truth[name]
		if !ok {
			return core.NewValidationError(core.ErrInvalidScenario, "truth", fmt.Sprintf("%s needs %v", c.Distribution, names))
		}
		if err := checkTruth(c.Distribution, name, v); err != nil {
			return err
		}
	}
	return nil
}

func checkTruth(d bayes.Distribution, name string, v float64) error {
	valid := !math.IsNaN(v) && !math.IsInf(v, 0)
	switch {
	case !valid:
	case name == TruthMu:
	case name == TruthP && d == bayes.Bernoulli:
		valid = v >= 0 && v <= 1
	case name == TruthP:
		valid = v > 0 && v <= 1
	default:
		valid = v > 0
	}
	if !valid {
		return core.NewValidationError(core.ErrInvalidScenario, name, fmt.Sprintf("%g is outside the %s parameter space", v, d))
	}
	return nil
}

// SampleGenerator draws synthetic observations from known distributions.
// It is not safe for concurrent use; give each goroutine its own source.
type SampleGenerator struct {
	src rand.Source
	rng *rand.Rand
}

// NewSampleGenerator creates a generator reading from src
func NewSampleGenerator(src rand.Source) *SampleGenerator {
	return &SampleGenerator{src: src, rng: rand.New(src)}
}

// Generate draws cfg.Size observations from the configured distribution
func (g *SampleGenerator) Generate(cfg SampleConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	truth := cfg.Truth
	out := make([]float64, cfg.Size)

	var dist interface{ Rand() float64 }
	switch cfg.Distribution {
	case bayes.Bernoulli:
		dist = distuv.Bernoulli{P: truth[TruthP], Src: g.src}
	case bayes.Poisson:
		dist = distuv.Poisson{Lambda: truth[TruthLambda], Src: g.src}
	case bayes.Normal:
		dist = distuv.Normal{Mu: truth[TruthMu], Sigma: truth[TruthSigma], Src: g.src}
	case bayes.LogNormal:
		dist = distuv.LogNormal{Mu: truth[TruthMu], Sigma: truth[TruthSigma], Src: g.src}
	case bayes.Exponential:
		dist = distuv.Exponential{Rate: truth[TruthRate], Src: g.src}
	case bayes.Uniform:
		dist = distuv.Uniform{Min: 0, Max: truth[TruthTheta], Src: g.src}
	case bayes.Geometric:
		// gonum has no geometric distribution; invert the CDF
		p := truth[TruthP]
		for i := range out {
			out[i] = g.geometric(p)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownDistribution, string(cfg.Distribution))
	}

	for i := range out {
		out[i] = dist.Rand()
	}
	return out, nil
}

// geometric returns the number of failures before the first success
func (g *SampleGenerator) geometric(p float64) float64 {
	if p == 1 {
		return 0
	}
	u := 1 - g.rng.Float64() // (0, 1]
	return math.Floor(math.Log(u) / math.Log1p(-p))
}

// PairConfig describes the two groups of a synthetic A/B test
type PairConfig struct {
	Distribution bayes.Distribution `json:"distribution"`
	TruthA       map[string]float64 `json:"truth_a"`
	TruthB       map[string]float64 `json:"truth_b"`
	SizeA        int                `json:"size_a"`
	SizeB        int                `json:"size_b"`
}

// AAConfig returns a pair config where both groups share the same truth
func AAConfig(d bayes.Distribution, truth map[string]float64, size int) PairConfig {
	return PairConfig{Distribution: d, TruthA: truth, TruthB: truth, SizeA: size, SizeB: size}
}

// IsNull reports whether both groups are generated from identical truths
func (c PairConfig) IsNull() bool {
	if len(c.TruthA) != len(c.TruthB) {
		return false
	}
	for k, v := range c.TruthA {
		if w, ok := c.TruthB[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// GeneratePair draws group A and then group B from the generator's source
func (g *SampleGenerator) GeneratePair(cfg PairConfig) (a, b []float64, err error) {
	a, err = g.Generate(SampleConfig{Distribution: cfg.Distribution, Truth: cfg.TruthA, Size: cfg.SizeA})
	if err != nil {
		return nil, nil, fmt.Errorf("group A: %w", err)
	}
	b, err = g.Generate(SampleConfig{Distribution: cfg.Distribution, Truth: cfg.TruthB, Size: cfg.SizeB})
	if err != nil {
		return nil, nil, fmt.Errorf("group B: %w", err)
	}
	return a, b, nil
}
