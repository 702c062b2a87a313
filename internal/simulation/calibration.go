package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"strconv"
	"time"

	"bayesab/app"
	"bayesab/domain/bayes"
	"bayesab/domain/core"
	"bayesab/internal"
	"bayesab/internal/testkit"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// Default decision bounds: P(A>B) outside [0.05, 0.95] is a significant call
const (
	DefaultLowerBound = 0.05
	DefaultUpperBound = 0.95
)

// Scenario is a repeated synthetic A/B experiment with known ground truth
type Scenario struct {
	Name            string             `json:"name"`
	Data            testkit.PairConfig `json:"data"`
	Priors          map[string]float64 `json:"priors"`
	Trials          int                `json:"trials"`
	SimulationCount int                `json:"simulation_count"`
	LowerBound      float64            `json:"lower_bound"`
	UpperBound      float64            `json:"upper_bound"`
}

// PoissonNullScenario is an A/A experiment with both groups drawn from
// Poisson(lambda) and the given Gamma prior.
func PoissonNullScenario(lambda float64, size, trials int, shape, rate float64) Scenario {
	return Scenario{
		Name:   fmt.Sprintf("poisson-aa-prior(%g,%g)", shape, rate),
		Data:   testkit.AAConfig(bayes.Poisson, map[string]float64{testkit.TruthLambda: lambda}, size),
		Priors: map[string]float64{bayes.ParamShape: shape, bayes.ParamRate: rate},
		Trials: trials,
	}
}

func (s Scenario) withDefaults() Scenario {
	if s.SimulationCount == 0 {
		s.SimulationCount = bayes.DefaultSimulationCount
	}
	if s.LowerBound == 0 && s.UpperBound == 0 {
		s.LowerBound, s.UpperBound = DefaultLowerBound, DefaultUpperBound
	}
	if s.Name == "" {
		s.Name = string(s.Data.Distribution)
	}
	return s
}

// Validate checks the scenario can be run
func (s Scenario) Validate() error {
	if s.Trials < 1 {
		return core.NewValidationError(core.ErrInvalidScenario, "trials", fmt.Sprintf("%d, must be >= 1", s.Trials))
	}
	if !(s.LowerBound >= 0 && s.LowerBound < s.UpperBound && s.UpperBound <= 1) {
		return core.NewValidationError(core.ErrInvalidScenario, "bounds",
			fmt.Sprintf("[%g, %g] is not an interval inside [0,1]", s.LowerBound, s.UpperBound))
	}
	if _, err := bayes.Validate(s.Data.Distribution, s.Priors); err != nil {
		return err
	}
	if err := (testkit.SampleConfig{Distribution: s.Data.Distribution, Truth: s.Data.TruthA, Size: s.Data.SizeA}).Validate(); err != nil {
		return fmt.Errorf("group A: %w", err)
	}
	if err := (testkit.SampleConfig{Distribution: s.Data.Distribution, Truth: s.Data.TruthB, Size: s.Data.SizeB}).Validate(); err != nil {
		return fmt.Errorf("group B: %w", err)
	}
	return nil
}

// TrialOutcome is the reduced result of one trial
type TrialOutcome struct {
	Index         int     `json:"index"`
	ProbAGreaterB float64 `json:"prob_a_gt_b"`
	ExpectedLossA float64 `json:"expected_loss_a"`
	ExpectedLossB float64 `json:"expected_loss_b"`
	Significant   bool    `json:"significant"`
	Warnings      int     `json:"warnings"`
}

// MarshalJSON encodes the NaN statistics of a trial without finite draws as null
func (o TrialOutcome) MarshalJSON() ([]byte, error) {
	type plain TrialOutcome
	return json.Marshal(struct {
		plain
		ProbAGreaterB core.Float `json:"prob_a_gt_b"`
		ExpectedLossA core.Float `json:"expected_loss_a"`
		ExpectedLossB core.Float `json:"expected_loss_b"`
	}{plain(o), core.Float(o.ProbAGreaterB), core.Float(o.ExpectedLossA), core.Float(o.ExpectedLossB)})
}

// Report aggregates every trial of a scenario
type Report struct {
	ID              core.CalibrationID        `json:"id"`
	Scenario        string                    `json:"scenario"`
	Distribution    bayes.Distribution        `json:"distribution"`
	Null            bool                      `json:"null"`
	Seed            uint64                    `json:"seed"`
	Trials          int                       `json:"trials"`
	Significant     int                       `json:"significant"`
	SignificantRate float64                   `json:"significant_rate"`
	MeanProb        float64                   `json:"mean_prob_a_gt_b"`
	Warnings        map[bayes.WarningCode]int `json:"warnings,omitempty"`
	Outcomes        []TrialOutcome            `json:"outcomes"`
	Duration        time.Duration             `json:"duration"`
}

// MarshalJSON encodes an undefined mean probability as null
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		MeanProb core.Float `json:"mean_prob_a_gt_b"`
	}{plain(r), core.Float(r.MeanProb)})
}

// FalsePositiveRate is the significant-call rate of an A/A scenario, or NaN
// when the groups differ and every significant call may be correct.
func (r *Report) FalsePositiveRate() float64 {
	if !r.Null {
		return math.NaN()
	}
	return r.SignificantRate
}

// InsideRate is the fraction of trials whose P(A>B) stayed inside the bounds
func (r *Report) InsideRate() float64 {
	return 1 - r.SignificantRate
}

// Calibrator runs scenarios as batches of independent A/B tests
type Calibrator struct {
	runner  *app.TestRunner
	workers int
	metrics *Metrics
	logger  *internal.Logger
}

// NewCalibrator creates a calibrator. workers < 1 means GOMAXPROCS; metrics
// may be nil.
func NewCalibrator(runner *app.TestRunner, workers int, metrics *Metrics, logger *internal.Logger) *Calibrator {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Calibrator{
		runner:  runner,
		workers: workers,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes every trial of the scenario. Trial i derives its data and its
// posterior draws from (seed, i) alone, so the report does not depend on the
// worker count or scheduling, and two scenarios run with the same seed see
// identical data. ctx is checked before each trial starts; a running trial is
// never interrupted.
func (c *Calibrator) Run(ctx context.Context, scenario Scenario, seed uint64) (*Report, error) {
	scenario = scenario.withDefaults()
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	logger := c.logger.With("scenario", scenario.Name, "seed", seed)
	logger.Info("calibration started", "trials", scenario.Trials, "workers", c.workers)

	outcomes := make([]TrialOutcome, scenario.Trials)
	warnings := make([][]bayes.NumericalWarning, scenario.Trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := 0; i < scenario.Trials; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, w, err := c.runTrial(gctx, scenario, seed, i)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			outcomes[i] = outcome
			warnings[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("calibration aborted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := aggregate(scenario, seed, outcomes, warnings)
	report.Duration = time.Since(startTime)

	logger.Info("calibration complete",
		"significant", report.Significant,
		"significant_rate", report.SignificantRate,
		"mean_prob_a_gt_b", report.MeanProb,
		"duration_ms", report.Duration.Milliseconds())

	return report, nil
}

func (c *Calibrator) runTrial(ctx context.Context, scenario Scenario, seed uint64, index int) (TrialOutcome, []bayes.NumericalWarning, error) {
	start := time.Now()
	trial := strconv.Itoa(index)

	dataSeed := core.StreamSeed(seed, "trial", trial, "data")
	gen := testkit.NewSampleGenerator(rand.NewPCG(seed, dataSeed))
	sampleA, sampleB, err := gen.GeneratePair(scenario.Data)
	if err != nil {
		return TrialOutcome{}, nil, err
	}

	drawSeed := core.StreamSeed(seed, "trial", trial, "draws")
	result, err := c.runner.Run(ctx, app.TestRequest{
		SampleA:         sampleA,
		SampleB:         sampleB,
		Priors:          scenario.Priors,
		Distribution:    scenario.Data.Distribution,
		SimulationCount: scenario.SimulationCount,
		Seed:            &drawSeed,
	})
	if err != nil {
		return TrialOutcome{}, nil, err
	}

	p := result.ProbAGreaterB()
	significant := p < scenario.LowerBound || p > scenario.UpperBound
	warnings := result.Warnings()
	c.metrics.recordTrial(scenario.Data.Distribution, significant, warnings, time.Since(start))

	return TrialOutcome{
		Index:         index,
		ProbAGreaterB: p,
		ExpectedLossA: result.ExpectedLossA(),
		ExpectedLossB: result.ExpectedLossB(),
		Significant:   significant,
		Warnings:      len(warnings),
	}, warnings, nil
}

func aggregate(scenario Scenario, seed uint64, outcomes []TrialOutcome, warnings [][]bayes.NumericalWarning) *Report {
	report := &Report{
		ID:           core.NewCalibrationID(),
		Scenario:     scenario.Name,
		Distribution: scenario.Data.Distribution,
		Null:         scenario.Data.IsNull(),
		Seed:         seed,
		Trials:       len(outcomes),
		Outcomes:     outcomes,
	}

	probs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		probs[i] = o.ProbAGreaterB
		if o.Significant {
			report.Significant++
		}
		for _, w := range warnings[i] {
			if report.Warnings == nil {
				report.Warnings = make(map[bayes.WarningCode]int)
			}
			report.Warnings[w.Code]++
		}
	}
	report.SignificantRate = float64(report.Significant) / float64(report.Trials)
	report.MeanProb = stat.Mean(probs, nil)
	return report
}
