package app

import (
	"context"
	"fmt"
	"time"

	"bayesab/adapters/rng"
	"bayesab/adapters/stats/comparison"
	"bayesab/adapters/stats/posterior"
	"bayesab/domain/bayes"
	"bayesab/domain/core"
	"bayesab/internal"
	"bayesab/ports"
)

// TestRunner executes a single Bayesian A/B comparison end to end
type TestRunner struct {
	sampler    ports.PosteriorSampler
	comparator ports.Comparator
	rngPort    ports.RNGPort
	logger     *internal.Logger
}

// TestRequest defines the inputs of one comparison
type TestRequest struct {
	ID              core.TestID // optional, generated when empty
	SampleA         []float64
	SampleB         []float64
	Priors          map[string]float64
	Distribution    bayes.Distribution
	SimulationCount int     // 0 means bayes.DefaultSimulationCount
	Seed            *uint64 // nil means a fresh seed, recorded on the result
	Compare         bayes.CompareOptions
}

// NewTestRunner creates a runner from explicit ports
func NewTestRunner(sampler ports.PosteriorSampler, comparator ports.Comparator, rngPort ports.RNGPort, logger *internal.Logger) *TestRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TestRunner{
		sampler:    sampler,
		comparator: comparator,
		rngPort:    rngPort,
		logger:     logger,
	}
}

// NewDefaultTestRunner wires the gonum sampler, the paired comparison engine
// and PCG streams.
func NewDefaultTestRunner(logger *internal.Logger) *TestRunner {
	return NewTestRunner(posterior.NewSampler(), comparison.NewEngine(), rng.NewStreams(), logger)
}

// Run validates the prior and both samples, updates each group's posterior,
// draws SimulationCount values per group from independent streams and reduces
// them into an immutable TestResult. It is synchronous and never returns a
// partial result.
func (r *TestRunner) Run(ctx context.Context, req TestRequest) (*bayes.TestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	count := req.SimulationCount
	if count == 0 {
		count = bayes.DefaultSimulationCount
	}
	if count < 1 {
		return nil, core.NewValidationError(core.ErrSimulationCount, "simulation_count", fmt.Sprintf("%d, must be >= 1", count))
	}

	opts := req.Compare
	if opts.CredibleLevel == 0 {
		opts.CredibleLevel = bayes.DefaultCredibleLevel
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	prior, err := bayes.Validate(req.Distribution, req.Priors)
	if err != nil {
		return nil, err
	}

	postA, err := bayes.Update(prior, req.SampleA)
	if err != nil {
		return nil, fmt.Errorf("group A: %w", err)
	}
	postB, err := bayes.Update(prior, req.SampleB)
	if err != nil {
		return nil, fmt.Errorf("group B: %w", err)
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = r.rngPort.NewSeed()
	}

	id := req.ID
	if id == "" {
		id = core.NewTestID()
	}
	fingerprint := bayes.Fingerprint(prior, req.SampleA, req.SampleB, count, seed, opts)
	logger := r.logger.With("test_id", id.String(), "distribution", req.Distribution.String(), "fingerprint", fingerprint.String())

	var warnings []bayes.NumericalWarning
	if w, low := bayes.LowSimulationCountWarning(count); low {
		warnings = append(warnings, w)
	}

	// Separate labelled streams keep A and B draws uncorrelated
	drawsA, err := r.sampler.Sample(postA, count, r.rngPort.Stream(seed, string(bayes.GroupA)))
	if err != nil {
		return nil, fmt.Errorf("sampling group A: %w", err)
	}
	drawsB, err := r.sampler.Sample(postB, count, r.rngPort.Stream(seed, string(bayes.GroupB)))
	if err != nil {
		return nil, fmt.Errorf("sampling group B: %w", err)
	}

	cmp, err := r.comparator.Compare(drawsA, drawsB, opts)
	if err != nil {
		return nil, fmt.Errorf("comparing draws: %w", err)
	}
	warnings = append(warnings, cmp.Warnings...)

	result, err := bayes.NewTestResult(bayes.ResultInput{
		ID:          id,
		Prior:       prior,
		PosteriorA:  postA,
		PosteriorB:  postB,
		DrawsA:      drawsA,
		DrawsB:      drawsB,
		Statistics:  cmp.Statistics,
		Warnings:    warnings,
		Seed:        seed,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range warnings {
		logger.Warn("numerical warning", "code", string(w.Code), "group", string(w.Group), "detail", w.Message)
	}
	logger.Debug("test complete",
		"seed", seed,
		"draws", count,
		"prob_a_gt_b", cmp.Statistics.ProbAGreaterB,
		"loss_a", cmp.Statistics.ExpectedLossA,
		"loss_b", cmp.Statistics.ExpectedLossB,
		"runtime_ms", time.Since(startTime).Milliseconds())

	return result, nil
}
