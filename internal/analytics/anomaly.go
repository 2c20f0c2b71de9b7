package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// DefaultAnomalyThreshold is the z-score beyond which a period is flagged.
const DefaultAnomalyThreshold = 2.0

// Anomaly kinds and metrics.
const (
	KindHigh = "High"
	KindLow  = "Low"

	MetricCrashes    = "crashes"
	MetricFatalities = "fatalities"
)

// boundaryTolerance absorbs rounding when a deviation sits exactly on k·σ.
const boundaryTolerance = 1e-9

// Point is one period of a time series.
type Point struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// Anomaly is a flagged period.
type Anomaly struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
	Kind   string  `json:"kind"`
	Metric string  `json:"metric,omitempty"`
}

// DetectAnomalies flags points whose distance from the series mean reaches
// threshold population standard deviations. A constant series has σ = 0 and
// never produces anomalies. threshold <= 0 selects DefaultAnomalyThreshold.
func DetectAnomalies(series []Point, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	out := []Anomaly{}

	s := Describe(Values(series))
	if s.StdDev == 0 {
		return out
	}

	for _, p := range series {
		dev := p.Value - s.Mean
		if math.Abs(dev) < threshold*s.StdDev*(1-boundaryTolerance) {
			continue
		}
		kind := KindLow
		if dev > 0 {
			kind = KindHigh
		}
		out = append(out, Anomaly{Period: p.Period, Value: p.Value, ZScore: dev / s.StdDev, Kind: kind})
	}
	return out
}

// Values extracts the values of a series.
func Values(series []Point) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}

// YearlySeries counts incidents per known year, ascending. Year 0 is skipped.
func YearlySeries(incs []domain.Incident) []Point {
	return yearly(incs, func(g []domain.Incident) float64 { return float64(len(g)) })
}

// YearlyFatalities sums fatalities per known year, ascending.
func YearlyFatalities(incs []domain.Incident) []Point {
	return yearly(incs, func(g []domain.Incident) float64 { return float64(Total(g).Fatalities) })
}

func yearly(incs []domain.Incident, value func([]domain.Incident) float64) []Point {
	groups := SortKeys(GroupBy(incs, ByYear))
	out := make([]Point, 0, groups.Len())
	for _, e := range groups.Entries() {
		if e.Key == 0 {
			continue
		}
		out = append(out, Point{Period: e.Key, Value: value(e.Value)})
	}
	return out
}

// YearAnomalies flags unusual years by crash count and by fatalities,
// ordered by year then metric.
func YearAnomalies(incs []domain.Incident, threshold float64) []Anomaly {
	crashes := DetectAnomalies(YearlySeries(incs), threshold)
	for i := range crashes {
		crashes[i].Metric = MetricCrashes
	}
	fatal := DetectAnomalies(YearlyFatalities(incs), threshold)
	for i := range fatal {
		fatal[i].Metric = MetricFatalities
	}
	out := append(crashes, fatal...)
	slices.SortStableFunc(out, func(a, b Anomaly) int {
		return cmp.Or(cmp.Compare(a.Period, b.Period), cmp.Compare(a.Metric, b.Metric))
	})
	return out
}
