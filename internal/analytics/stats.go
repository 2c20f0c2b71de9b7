package analytics

import (
	"github.com/montanaflynn/stats"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// Summary holds descriptive statistics of a numeric series. StdDev is the
// population standard deviation.
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes a Summary. Empty input yields the zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	data := stats.Float64Data(values)
	// The stats functions only fail on empty input, ruled out above.
	sum, _ := stats.Sum(data)
	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviationPopulation(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	return Summary{Count: len(values), Sum: sum, Mean: mean, StdDev: sd, Min: lo, Max: hi}
}

// Sum returns the sum of values, 0 when empty.
func Sum(values []float64) float64 { return Describe(values).Sum }

// Mean returns the arithmetic mean, 0 when empty.
func Mean(values []float64) float64 { return Describe(values).Mean }

// StdDev returns the population standard deviation, 0 when empty.
func StdDev(values []float64) float64 { return Describe(values).StdDev }

// Rate returns n/d, or 0 when d is 0.
func Rate(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// Percent returns Rate(n, d) scaled to 0..100.
func Percent(n, d float64) float64 { return Rate(n, d) * 100 }

// Floats converts an integer series.
func Floats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Totals are the summed casualty figures of a set of incidents.
type Totals struct {
	Incidents       int `json:"incidents"`
	Fatalities      int `json:"fatalities"`
	Aboard          int `json:"aboard"`
	Ground          int `json:"ground"`
	EstimatedAboard int `json:"estimated_aboard"`
}

// Survivors is Aboard minus Fatalities.
func (t Totals) Survivors() int { return t.Aboard - t.Fatalities }

// SurvivalRate is the share of people aboard who survived, in percent.
func (t Totals) SurvivalRate() float64 {
	return Percent(float64(t.Survivors()), float64(t.Aboard))
}

// FatalityRate is the share of people aboard who died, in percent.
func (t Totals) FatalityRate() float64 {
	return Percent(float64(t.Fatalities), float64(t.Aboard))
}

// Total sums the casualty figures of incs.
func Total(incs []domain.Incident) Totals {
	t := Totals{Incidents: len(incs)}
	for _, inc := range incs {
		t.Fatalities += inc.Fatalities
		t.Aboard += inc.Aboard
		t.Ground += inc.Ground
		if inc.AboardEstimated {
			t.EstimatedAboard++
		}
	}
	return t
}
