package simulation

import (
	"time"

	"bayesab/domain/bayes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSignificant  = "significant"
	outcomeInconclusive = "inconclusive"
)

// Metrics records calibration progress. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// trials counts finished trials.
	// Labels: distribution, outcome (significant, inconclusive)
	trials *prometheus.CounterVec

	// warnings counts numerical warnings raised inside trials.
	// Labels: distribution, code
	warnings *prometheus.CounterVec

	// trialDuration measures one trial end to end, data generation included.
	// Labels: distribution
	trialDuration *prometheus.HistogramVec
}

// NewMetrics registers the calibration collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bayesab",
			Subsystem: "calibration",
			Name:      "trials_total",
			Help:      "Calibration trials completed by outcome",
		}, []string{"distribution", "outcome"}),
		warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bayesab",
			Subsystem: "calibration",
			Name:      "numerical_warnings_total",
			Help:      "Numerical warnings raised by calibration trials",
		}, []string{"distribution", "code"}),
		trialDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bayesab",
			Subsystem: "calibration",
			Name:      "trial_duration_seconds",
			Help:      "Wall time of one calibration trial",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"distribution"}),
	}
}

func (m *Metrics) recordTrial(dist bayes.Distribution, significant bool, warnings []bayes.NumericalWarning, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := outcomeInconclusive
	if significant {
		outcome = outcomeSignificant
	}
	m.trials.WithLabelValues(string(dist), outcome).Inc()
	for _, w := range warnings {
		m.warnings.WithLabelValues(string(dist), string(w.Code)).Inc()
	}
	m.trialDuration.WithLabelValues(string(dist)).Observe(elapsed.Seconds())
}
