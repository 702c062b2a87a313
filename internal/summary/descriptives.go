package summary

import (
	"encoding/json"
	"math"

	"bayesab/domain/core"

	"github.com/montanaflynn/stats"
)

// DrawSummary describes one group's posterior draws
type DrawSummary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
}

// MarshalJSON encodes the NaN fields of an all non-finite group as null
func (d DrawSummary) MarshalJSON() ([]byte, error) {
	type plain DrawSummary
	return json.Marshal(struct {
		plain
		Mean     core.Float `json:"mean"`
		StdDev   core.Float `json:"std_dev"`
		Min      core.Float `json:"min"`
		Max      core.Float `json:"max"`
		Median   core.Float `json:"median"`
		Q25      core.Float `json:"q25"`
		Q75      core.Float `json:"q75"`
		Skewness core.Float `json:"skewness"`
	}{
		plain:    plain(d),
		Mean:     core.Float(d.Mean),
		StdDev:   core.Float(d.StdDev),
		Min:      core.Float(d.Min),
		Max:      core.Float(d.Max),
		Median:   core.Float(d.Median),
		Q25:      core.Float(d.Q25),
		Q75:      core.Float(d.Q75),
		Skewness: core.Float(d.Skewness),
	})
}

// describe summarises the finite draws; with none left every field is NaN
func describe(draws []float64) (DrawSummary, error) {
	data := make(stats.Float64Data, 0, len(draws))
	for _, x := range draws {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			data = append(data, x)
		}
	}
	if len(data) == 0 {
		n := math.NaN()
		return DrawSummary{Mean: n, StdDev: n, Min: n, Max: n, Median: n, Q25: n, Q75: n, Skewness: n}, nil
	}

	out := DrawSummary{Count: len(data)}
	var err error

	if out.Mean, err = data.Mean(); err != nil {
		return out, err
	}
	if out.StdDev, err = data.StandardDeviation(); err != nil {
		return out, err
	}
	if out.Min, err = data.Min(); err != nil {
		return out, err
	}
	if out.Max, err = data.Max(); err != nil {
		return out, err
	}
	if out.Median, err = data.Median(); err != nil {
		return out, err
	}
	if out.Q25, err = data.Percentile(25); err != nil {
		return out, err
	}
	if out.Q75, err = data.Percentile(75); err != nil {
		return out, err
	}
	out.Skewness = skewness(data, out.Mean, out.StdDev)
	return out, nil
}

func skewness(data []float64, mean, stdDev float64) float64 {
	if stdDev == 0 || len(data) < 3 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		z := (x - mean) / stdDev
		sum += z * z * z
	}
	return sum / float64(len(data))
}
