package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// Scoring weights and normalizers.
const (
	crashNormalizer    = 10.0 // crashes at which the crash component saturates
	fatalityMultiplier = 2.0  // fatality-rate percent to component points
	crashWeight        = 0.3
	fatalityWeight     = 0.7

	riskCrashWeight    = 1.5
	riskFatalityDiv    = 10.0
	riskRateWeight     = 2.0
	costPerCrash       = 50.0 // millions USD
	costPerFatality    = 1.5  // millions USD
	minCrashesForCosts = 2
)

// ScoreEntry is the safety profile of one operator or aircraft type.
type ScoreEntry struct {
	Entity                string  `json:"entity"`
	Crashes               int     `json:"crashes"`
	Fatalities            int     `json:"fatalities"`
	Aboard                int     `json:"aboard"`
	EstimatedAboard       int     `json:"estimated_aboard"`
	FatalityRate          float64 `json:"fatality_rate"`
	Score                 float64 `json:"score"`
	Grade                 string  `json:"grade"`
	WeightedRisk          float64 `json:"weighted_risk"`
	EstimatedCostMillions float64 `json:"estimated_cost_millions"`
}

// Score computes the safety profile of entity from its incidents. Aboard
// counts of normalized incidents already carry the Fatalities+10 estimate
// where the source had none; EstimatedAboard reports how many did.
func Score(entity string, incs []domain.Incident) ScoreEntry {
	t := Total(incs)
	rate := t.FatalityRate()

	crashComponent := math.Min(float64(t.Incidents)/crashNormalizer*100, 100)
	fatalityComponent := math.Min(rate*fatalityMultiplier, 100)
	raw := crashWeight*crashComponent + fatalityWeight*fatalityComponent
	score := math.Max(0, 100-raw)

	return ScoreEntry{
		Entity:                entity,
		Crashes:               t.Incidents,
		Fatalities:            t.Fatalities,
		Aboard:                t.Aboard,
		EstimatedAboard:       t.EstimatedAboard,
		FatalityRate:          rate,
		Score:                 score,
		Grade:                 Grade(score),
		WeightedRisk:          riskCrashWeight*float64(t.Incidents) + float64(t.Fatalities)/riskFatalityDiv + riskRateWeight*rate,
		EstimatedCostMillions: costPerCrash*float64(t.Incidents) + costPerFatality*float64(t.Fatalities),
	}
}

// Grade maps a safety score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// ScoreGroups scores every group, preserving group order.
func ScoreGroups(groups *OrderedMap[string, []domain.Incident]) []ScoreEntry {
	out := make([]ScoreEntry, 0, groups.Len())
	for _, e := range groups.Entries() {
		out = append(out, Score(e.Key, e.Value))
	}
	return out
}

// TopSafest scores the n entities with the most incidents and orders them
// safest first. Ties are broken by entity name. n <= 0 keeps every entity.
func TopSafest(incs []domain.Incident, key func(domain.Incident) string, n int) []ScoreEntry {
	entries := ScoreGroups(GroupBy(incs, key))
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return cmp.Or(cmp.Compare(b.Crashes, a.Crashes), cmp.Compare(a.Entity, b.Entity))
	})
	entries = limit(entries, n)
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.Entity, b.Entity))
	})
	return entries
}

// RiskRanking orders entities by weighted risk, most dangerous first, keeping
// those strictly above minRisk. n <= 0 keeps every entity.
func RiskRanking(incs []domain.Incident, key func(domain.Incident) string, minRisk float64, n int) []ScoreEntry {
	entries := ScoreGroups(GroupBy(incs, key))
	entries = slices.DeleteFunc(entries, func(e ScoreEntry) bool { return e.WeightedRisk <= minRisk })
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return cmp.Or(cmp.Compare(b.WeightedRisk, a.WeightedRisk), cmp.Compare(a.Entity, b.Entity))
	})
	return limit(entries, n)
}

// CostRanking orders operators with at least two incidents by estimated
// cost, highest first. The "Unknown" operator is left out.
func CostRanking(incs []domain.Incident, n int) []ScoreEntry {
	entries := ScoreGroups(GroupBy(incs, ByOperator))
	entries = slices.DeleteFunc(entries, func(e ScoreEntry) bool {
		return e.Entity == domain.Unknown || e.Crashes < minCrashesForCosts
	})
	slices.SortStableFunc(entries, func(a, b ScoreEntry) int {
		return cmp.Or(cmp.Compare(b.EstimatedCostMillions, a.EstimatedCostMillions), cmp.Compare(a.Entity, b.Entity))
	})
	return limit(entries, n)
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
