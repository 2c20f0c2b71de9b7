package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ForecastMethod selects how a trend line is fitted.
type ForecastMethod string

const (
	// ForecastEndpoint draws the line through the first and last points.
	ForecastEndpoint ForecastMethod = "endpoint"
	// ForecastLeastSquares fits an ordinary least-squares line to every point.
	ForecastLeastSquares ForecastMethod = "least_squares"
)

// ParseForecastMethod validates a method name. Empty selects ForecastEndpoint.
func ParseForecastMethod(s string) (ForecastMethod, error) {
	switch m := ForecastMethod(s); m {
	case "":
		return ForecastEndpoint, nil
	case ForecastEndpoint, ForecastLeastSquares:
		return m, nil
	default:
		return "", fmt.Errorf("unknown forecast method %q", s)
	}
}

// Prediction is a projected value for a future period.
type Prediction struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// Forecast projects horizon periods past the last point of series. It needs
// at least two distinct periods; with fewer, or horizon <= 0, the result is
// empty. Predicted values are clamped at 0.
func Forecast(series []Point, horizon int, method ForecastMethod) []Prediction {
	out := []Prediction{}
	if horizon <= 0 || len(series) < 2 {
		return out
	}

	pts := slices.Clone(series)
	slices.SortStableFunc(pts, func(a, b Point) int { return cmp.Compare(a.Period, b.Period) })
	first, last := pts[0], pts[len(pts)-1]
	if first.Period == last.Period {
		return out
	}

	var predict func(period int) float64
	switch method {
	case ForecastLeastSquares:
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i] = float64(p.Period)
			ys[i] = p.Value
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		predict = func(period int) float64 { return alpha + beta*float64(period) }
	default:
		slope := (last.Value - first.Value) / float64(last.Period-first.Period)
		predict = func(period int) float64 { return last.Value + slope*float64(period-last.Period) }
	}

	for i := 1; i <= horizon; i++ {
		period := last.Period + i
		out = append(out, Prediction{Period: period, Value: math.Max(0, predict(period))})
	}
	return out
}
