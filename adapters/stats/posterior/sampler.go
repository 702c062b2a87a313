package posterior

import (
	"fmt"
	"math"
	"math/rand/v2"

	"bayesab/domain/bayes"
	"bayesab/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws Monte Carlo samples of the compared quantity from a posterior:
// the success probability for Beta forms, the rate for Gamma forms, the mean
// for Normal-Inverse-Gamma forms and the upper bound for Pareto forms.
type Sampler struct{}

// NewSampler creates a posterior sampler
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample draws count values from the posterior using only src. Identical
// posterior, count and source state give bit-identical output.
func (s *Sampler) Sample(post bayes.PosteriorParams, count int, src rand.Source) ([]float64, error) {
	if count < 1 {
		return nil, core.NewValidationError(core.ErrSimulationCount, "count", fmt.Sprintf("%d, must be >= 1", count))
	}
	if post.IsZero() {
		return nil, core.NewStructuralError(core.ErrMissingPosterior, "cannot sample an empty posterior")
	}
	if src == nil {
		return nil, fmt.Errorf("posterior sampler requires an explicit random source")
	}

	spec, err := bayes.Lookup(post.Distribution())
	if err != nil {
		return nil, err
	}

	draws := make([]float64, count)
	p := post.Params()

	switch spec.Form {
	case bayes.FormBeta:
		fill(draws, distuv.Beta{Alpha: p.Get(bayes.ParamAlpha), Beta: p.Get(bayes.ParamBeta), Src: src})

	case bayes.FormGamma:
		fill(draws, distuv.Gamma{Alpha: p.Get(bayes.ParamShape), Beta: p.Get(bayes.ParamRate), Src: src})

	case bayes.FormNormalInverseGamma:
		sampleNormalInverseGamma(draws, p, src, false)

	case bayes.FormLogNormalInverseGamma:
		sampleNormalInverseGamma(draws, p, src, true)

	case bayes.FormPareto:
		fill(draws, distuv.Pareto{Xm: p.Get(bayes.ParamXm), Alpha: p.Get(bayes.ParamAlpha), Src: src})

	default:
		return nil, fmt.Errorf("no sampler for posterior form %q", spec.Form)
	}

	return draws, nil
}

type rander interface {
	Rand() float64
}

func fill(dst []float64, dist rander) {
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

// sampleNormalInverseGamma draws sigma^2 ~ InvGamma(alpha, beta) and then
// mu | sigma^2 ~ Normal(mu, sigma^2/lambda). With logScale the draw is the
// log-normal mean exp(mu + sigma^2/2) instead of mu.
func sampleNormalInverseGamma(dst []float64, p bayes.Params, src rand.Source, logScale bool) {
	mu := p.Get(bayes.ParamMu)
	lambda := p.Get(bayes.ParamLambda)
	variance := distuv.InverseGamma{Alpha: p.Get(bayes.ParamAlpha), Beta: p.Get(bayes.ParamBeta), Src: src}

	for i := range dst {
		sigma2 := variance.Rand()
		mean := distuv.Normal{Mu: mu, Sigma: math.Sqrt(sigma2 / lambda), Src: src}.Rand()
		if logScale {
			dst[i] = math.Exp(mean + sigma2/2)
		} else {
			dst[i] = mean
		}
	}
}
