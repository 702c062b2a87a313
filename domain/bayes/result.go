package bayes

import (
	"encoding/json"
	"fmt"

	"bayesab/domain/core"
)

// Quantile pairs a probability with the corresponding value
type Quantile struct {
	Probability float64 `json:"probability"`
	Value       float64 `json:"value"`
}

// MarshalJSON encodes a non-finite value as null
func (q Quantile) MarshalJSON() ([]byte, error) {
	type plain Quantile
	return json.Marshal(struct {
		plain
		Value core.Float `json:"value"`
	}{plain(q), core.Float(q.Value)})
}

// CredibleInterval is an equal-tailed posterior interval of A - B
type CredibleInterval struct {
	Level  float64 `json:"level"`
	Lower  float64 `json:"lower"`
	Median float64 `json:"median"`
	Upper  float64 `json:"upper"`
}

// Contains reports whether v lies inside the interval
func (c CredibleInterval) Contains(v float64) bool {
	return v >= c.Lower && v <= c.Upper
}

// MarshalJSON encodes non-finite bounds as null
func (c CredibleInterval) MarshalJSON() ([]byte, error) {
	type plain CredibleInterval
	return json.Marshal(struct {
		plain
		Lower  core.Float `json:"lower"`
		Median core.Float `json:"median"`
		Upper  core.Float `json:"upper"`
	}{plain(c), core.Float(c.Lower), core.Float(c.Median), core.Float(c.Upper)})
}

// Statistics is what the comparison engine derives from paired draws
type Statistics struct {
	ProbAGreaterB float64          `json:"prob_a_gt_b"`
	ExpectedLossA float64          `json:"expected_loss_a"`
	ExpectedLossB float64          `json:"expected_loss_b"`
	MeanDiff      float64          `json:"mean_diff"`
	DiffInterval  CredibleInterval `json:"diff_interval"`
	DiffQuantiles []Quantile       `json:"diff_quantiles"`
	LiftQuantiles []Quantile       `json:"lift_quantiles,omitempty"`
	PairsUsed     int              `json:"pairs_used"`
}

// MarshalJSON encodes the NaN sentinel of undefined statistics as null
func (s Statistics) MarshalJSON() ([]byte, error) {
	type plain Statistics
	return json.Marshal(struct {
		plain
		ProbAGreaterB core.Float `json:"prob_a_gt_b"`
		ExpectedLossA core.Float `json:"expected_loss_a"`
		ExpectedLossB core.Float `json:"expected_loss_b"`
		MeanDiff      core.Float `json:"mean_diff"`
	}{
		plain:         plain(s),
		ProbAGreaterB: core.Float(s.ProbAGreaterB),
		ExpectedLossA: core.Float(s.ExpectedLossA),
		ExpectedLossB: core.Float(s.ExpectedLossB),
		MeanDiff:      core.Float(s.MeanDiff),
	})
}

func (s Statistics) clone() Statistics {
	s.DiffQuantiles = append([]Quantile(nil), s.DiffQuantiles...)
	s.LiftQuantiles = append([]Quantile(nil), s.LiftQuantiles...)
	return s
}

// ResultInput gathers everything needed to assemble a TestResult
type ResultInput struct {
	ID         core.TestID
	Prior      PriorSpec
	PosteriorA PosteriorParams
	PosteriorB PosteriorParams
	DrawsA     []float64
	DrawsB     []float64
	Statistics Statistics
	Warnings   []NumericalWarning
	Seed       uint64
	CreatedAt  core.Timestamp

	// Fingerprint of the inputs, see Fingerprint. Optional.
	Fingerprint core.Hash
}

// TestResult is the immutable outcome of one A/B comparison. Slices handed
// out by accessors are copies; nothing inside can change after creation.
type TestResult struct {
	id         core.TestID
	prior      PriorSpec
	posteriorA PosteriorParams
	posteriorB PosteriorParams
	drawsA     []float64
	drawsB     []float64
	stats      Statistics
	warnings   []NumericalWarning
	seed       uint64
	createdAt  core.Timestamp
	inputHash  core.Hash
}

// NewTestResult checks structural invariants and takes private copies of the input
func NewTestResult(in ResultInput) (*TestResult, error) {
	if in.PosteriorA.IsZero() || in.PosteriorB.IsZero() {
		return nil, core.NewStructuralError(core.ErrMissingPosterior, "posterior parameters are required for both groups")
	}
	if in.Prior.IsZero() {
		return nil, core.NewStructuralError(core.ErrMissingPosterior, "prior is required")
	}
	if in.PosteriorA.Distribution() != in.Prior.Distribution() || in.PosteriorB.Distribution() != in.Prior.Distribution() {
		return nil, core.NewStructuralError(core.ErrFamilyMismatch,
			fmt.Sprintf("prior %s, posterior A %s, posterior B %s",
				in.Prior.Distribution(), in.PosteriorA.Distribution(), in.PosteriorB.Distribution()))
	}
	if len(in.DrawsA) == 0 || len(in.DrawsB) == 0 {
		return nil, core.NewStructuralError(core.ErrEmptyDraws, "both groups need at least one draw")
	}
	if len(in.DrawsA) != len(in.DrawsB) {
		return nil, core.NewStructuralError(core.ErrDrawLengthMismatch,
			fmt.Sprintf("A has %d draws, B has %d", len(in.DrawsA), len(in.DrawsB)))
	}

	id := in.ID
	if id == "" {
		id = core.NewTestID()
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = core.Now()
	}

	return &TestResult{
		id:         id,
		prior:      in.Prior,
		posteriorA: in.PosteriorA,
		posteriorB: in.PosteriorB,
		drawsA:     append([]float64(nil), in.DrawsA...),
		drawsB:     append([]float64(nil), in.DrawsB...),
		stats:      in.Statistics.clone(),
		warnings:   append([]NumericalWarning(nil), in.Warnings...),
		seed:       in.Seed,
		createdAt:  createdAt,
		inputHash:  in.Fingerprint,
	}, nil
}

func (r *TestResult) ID() core.TestID               { return r.id }
func (r *TestResult) Distribution() Distribution    { return r.prior.Distribution() }
func (r *TestResult) Prior() PriorSpec              { return r.prior }
func (r *TestResult) PosteriorA() PosteriorParams   { return r.posteriorA }
func (r *TestResult) PosteriorB() PosteriorParams   { return r.posteriorB }
func (r *TestResult) Seed() uint64                  { return r.seed }
func (r *TestResult) CreatedAt() core.Timestamp     { return r.createdAt }
func (r *TestResult) Fingerprint() core.Hash        { return r.inputHash }
func (r *TestResult) SimulationCount() int          { return len(r.drawsA) }
func (r *TestResult) ProbAGreaterB() float64        { return r.stats.ProbAGreaterB }
func (r *TestResult) ExpectedLossA() float64        { return r.stats.ExpectedLossA }
func (r *TestResult) ExpectedLossB() float64        { return r.stats.ExpectedLossB }

// CredibleInterval returns the equal-tailed interval of A - B
func (r *TestResult) CredibleInterval() CredibleInterval { return r.stats.DiffInterval }

// DrawsA returns a copy of group A's posterior draws
func (r *TestResult) DrawsA() []float64 { return append([]float64(nil), r.drawsA...) }

// DrawsB returns a copy of group B's posterior draws
func (r *TestResult) DrawsB() []float64 { return append([]float64(nil), r.drawsB...) }

// Statistics returns a copy of the derived statistics
func (r *TestResult) Statistics() Statistics { return r.stats.clone() }

// Warnings returns a copy of the numerical warnings raised during the test
func (r *TestResult) Warnings() []NumericalWarning {
	return append([]NumericalWarning(nil), r.warnings...)
}

// HasWarning reports whether a warning with the given code was raised
func (r *TestResult) HasWarning(code WarningCode) bool {
	for _, w := range r.warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ResultSnapshot is the serialisable view of a TestResult without raw draws
type ResultSnapshot struct {
	ID              core.TestID        `json:"id"`
	Distribution    Distribution       `json:"distribution"`
	Prior           map[string]float64 `json:"prior"`
	PosteriorA      map[string]float64 `json:"posterior_a"`
	PosteriorB      map[string]float64 `json:"posterior_b"`
	ObservationsA   int                `json:"observations_a"`
	ObservationsB   int                `json:"observations_b"`
	SimulationCount int                `json:"simulation_count"`
	Seed            uint64             `json:"seed"`
	Fingerprint     core.Hash          `json:"fingerprint,omitempty"`
	Statistics      Statistics         `json:"statistics"`
	Warnings        []NumericalWarning `json:"warnings,omitempty"`
	CreatedAt       core.Timestamp     `json:"created_at"`
}

// Snapshot returns a detached, serialisable copy of the result
func (r *TestResult) Snapshot() ResultSnapshot {
	return ResultSnapshot{
		ID:              r.id,
		Distribution:    r.Distribution(),
		Prior:           r.prior.Params().Map(),
		PosteriorA:      r.posteriorA.Params().Map(),
		PosteriorB:      r.posteriorB.Params().Map(),
		ObservationsA:   r.posteriorA.Observations(),
		ObservationsB:   r.posteriorB.Observations(),
		SimulationCount: r.SimulationCount(),
		Seed:            r.seed,
		Fingerprint:     r.inputHash,
		Statistics:      r.Statistics(),
		Warnings:        r.Warnings(),
		CreatedAt:       r.createdAt,
	}
}
