package analytics

import (
	"math"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// Risk levels.
const (
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
)

const (
	riskBase        = 50.0
	riskFactorScale = 10.0
	riskLowCeiling  = 40.0
	riskModCeiling  = 70.0
	averageOperator = "Average"
)

// RiskQuery describes a hypothetical flight. Empty fields, or "Average" for
// the operator, contribute nothing.
type RiskQuery struct {
	Operator string `json:"operator"`
	Season   string `json:"season"`
	Day      string `json:"day"`
}

// RiskAssessment is the relative risk of a hypothetical flight, 0..100.
type RiskAssessment struct {
	Query          RiskQuery `json:"query"`
	Score          float64   `json:"score"`
	Level          string    `json:"level"`
	OperatorFactor float64   `json:"operator_factor"`
	SeasonFactor   float64   `json:"season_factor"`
	DayFactor      float64   `json:"day_factor"`
}

// AssessFlightRisk scores a hypothetical flight against historical incidents.
// The operator adds half its safety deficit; season and day add their
// relative deviation from the average bucket, times ten.
func AssessFlightRisk(incs []domain.Incident, q RiskQuery) RiskAssessment {
	a := RiskAssessment{Query: q}

	if q.Operator != "" && q.Operator != averageOperator {
		if g, ok := GroupBy(incs, ByOperator).Get(q.Operator); ok {
			a.OperatorFactor = (100 - Score(q.Operator, g).Score) / 2
		}
	}
	a.SeasonFactor = deviationFactor(CountBy(Pluck(incs, BySeason)), q.Season)
	a.DayFactor = deviationFactor(CountBy(knownDays(incs)), q.Day)

	a.Score = math.Max(0, math.Min(100, riskBase+a.OperatorFactor+a.SeasonFactor+a.DayFactor))
	a.Level = RiskLevel(a.Score)
	return a
}

// RiskLevel labels a risk score.
func RiskLevel(score float64) string {
	switch {
	case score < riskLowCeiling:
		return RiskLow
	case score < riskModCeiling:
		return RiskModerate
	default:
		return RiskHigh
	}
}

func deviationFactor(counts *OrderedMap[string, int], key string) float64 {
	n, ok := counts.Get(key)
	if !ok {
		return 0
	}
	avg := Mean(Floats(counts.Values()))
	return Rate(float64(n)-avg, avg) * riskFactorScale
}
