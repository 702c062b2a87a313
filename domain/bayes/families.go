package bayes

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Prior parameter names shared across families
const (
	ParamAlpha  = "alpha"
	ParamBeta   = "beta"
	ParamShape  = "shape"
	ParamRate   = "rate"
	ParamMu     = "mu"
	ParamLambda = "lambda"
	ParamXm     = "xm"
)

func nan() float64 { return math.NaN() }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isBinary(x float64) bool {
	return x == 0 || x == 1
}

func isCount(x float64) bool {
	return isFinite(x) && x >= 0 && x == math.Trunc(x)
}

func isNonNegative(x float64) bool {
	return isFinite(x) && x >= 0
}

func isPositive(x float64) bool {
	return isFinite(x) && x > 0
}

// updateBetaBernoulli adds successes to alpha and failures to beta
func updateBetaBernoulli(prior Params, sample []float64) Params {
	successes := floats.Sum(sample)
	failures := float64(len(sample)) - successes
	return NewParams(map[string]float64{
		ParamAlpha: prior.Get(ParamAlpha) + successes,
		ParamBeta:  prior.Get(ParamBeta) + failures,
	})
}

// updateGammaPoisson adds the event total to shape and the exposure to rate
func updateGammaPoisson(prior Params, sample []float64) Params {
	return NewParams(map[string]float64{
		ParamShape: prior.Get(ParamShape) + floats.Sum(sample),
		ParamRate:  prior.Get(ParamRate) + float64(len(sample)),
	})
}

// updateGammaExponential treats the sample as waiting times for a rate
func updateGammaExponential(prior Params, sample []float64) Params {
	return NewParams(map[string]float64{
		ParamShape: prior.Get(ParamShape) + float64(len(sample)),
		ParamRate:  prior.Get(ParamRate) + floats.Sum(sample),
	})
}

// updateBetaGeometric counts failures before the first success per trial
func updateBetaGeometric(prior Params, sample []float64) Params {
	return NewParams(map[string]float64{
		ParamAlpha: prior.Get(ParamAlpha) + float64(len(sample)),
		ParamBeta:  prior.Get(ParamBeta) + floats.Sum(sample),
	})
}

// updateNormalInverseGamma combines lambda prior pseudo-observations centred
// on mu with the sample mean, and folds the sample's squared deviations plus
// the prior/sample mean disagreement into beta.
func updateNormalInverseGamma(prior Params, sample []float64) Params {
	mu := prior.Get(ParamMu)
	lambda := prior.Get(ParamLambda)
	alpha := prior.Get(ParamAlpha)
	beta := prior.Get(ParamBeta)

	n := float64(len(sample))
	mean := stat.Mean(sample, nil)
	ss := 0.0
	for _, x := range sample {
		d := x - mean
		ss += d * d
	}

	lambdaPost := lambda + n
	return NewParams(map[string]float64{
		ParamMu:     (lambda*mu + n*mean) / lambdaPost,
		ParamLambda: lambdaPost,
		ParamAlpha:  alpha + n/2,
		ParamBeta:   beta + ss/2 + n*lambda*(mean-mu)*(mean-mu)/(2*lambdaPost),
	})
}

// updateLogNormalInverseGamma applies the normal update on the log scale
func updateLogNormalInverseGamma(prior Params, sample []float64) Params {
	logs := make([]float64, len(sample))
	for i, x := range sample {
		logs[i] = math.Log(x)
	}
	return updateNormalInverseGamma(prior, logs)
}

// updateParetoUniform tracks the largest observation as the new scale
func updateParetoUniform(prior Params, sample []float64) Params {
	return NewParams(map[string]float64{
		ParamXm:    math.Max(prior.Get(ParamXm), floats.Max(sample)),
		ParamAlpha: prior.Get(ParamAlpha) + float64(len(sample)),
	})
}
