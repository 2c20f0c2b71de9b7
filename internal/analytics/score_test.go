package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

func repeat(n int, r rec) []rec {
	out := make([]rec, n)
	for i := range out {
		out[i] = r
	}
	return out
}

func TestScore_NoIncidents(t *testing.T) {
	e := Score("Clean Air", nil)

	assert.Equal(t, 100.0, e.Score)
	assert.Equal(t, "A+", e.Grade)
	assert.Zero(t, e.FatalityRate)
}

func TestScore_WorstCase(t *testing.T) {
	incs := build(repeat(10, rec{year: 1990, operator: "Doomed Air", fatalities: 50, aboard: 100})...)

	e := Score("Doomed Air", incs)

	assert.Equal(t, 10, e.Crashes)
	assert.InDelta(t, 50.0, e.FatalityRate, 1e-9)
	assert.InDelta(t, 0.0, e.Score, 1e-9)
	assert.Equal(t, "F", e.Grade)
}

func TestScore_Formula(t *testing.T) {
	// C=2, F=10, A=100 -> R=10, crash=20, fatal=20, raw=20, score=80.
	incs := build(
		rec{year: 1990, fatalities: 10, aboard: 60},
		rec{year: 1991, fatalities: 0, aboard: 40},
	)

	e := Score("X", incs)

	assert.InDelta(t, 10.0, e.FatalityRate, 1e-9)
	assert.InDelta(t, 80.0, e.Score, 1e-9)
	assert.Equal(t, "A", e.Grade)
	assert.InDelta(t, 1.5*2+1+20, e.WeightedRisk, 1e-9)
	assert.InDelta(t, 100+15.0, e.EstimatedCostMillions, 1e-9)
}

func TestScore_EstimatedAboard(t *testing.T) {
	incs := build(rec{year: 1990, fatalities: 10})

	e := Score("X", incs)

	assert.Equal(t, 20, e.Aboard)
	assert.Equal(t, 1, e.EstimatedAboard)
	assert.InDelta(t, 50.0, e.FatalityRate, 1e-9)
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A+"}, {90, "A+"}, {89.99, "A"}, {80, "A"}, {70, "B"},
		{60, "C"}, {50, "D"}, {49.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score), "score %v", tt.score)
	}
}

func TestTopSafest_TieBreakAndLimit(t *testing.T) {
	recs := []rec{
		{year: 1990, operator: "Bravo", fatalities: 0, aboard: 10},
		{year: 1990, operator: "Alpha", fatalities: 0, aboard: 10},
		{year: 1990, operator: "Charlie", fatalities: 5, aboard: 10},
		{year: 1990, operator: "Charlie", fatalities: 5, aboard: 10},
	}
	incs := build(recs...)

	all := TopSafest(incs, ByOperator, 0)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, entities(all))

	// Candidates are the entities with the most incidents.
	top := TopSafest(incs, ByOperator, 2)
	assert.Equal(t, []string{"Alpha", "Charlie"}, entities(top))
}

func TestTopSafest_Deterministic(t *testing.T) {
	incs := filterFixture()
	assert.Equal(t, TopSafest(incs, ByCategory, 3), TopSafest(incs, ByCategory, 3))
}

func TestRiskRanking(t *testing.T) {
	incs := build(
		rec{year: 1990, operator: "Low", fatalities: 0, aboard: 10},
		rec{year: 1990, operator: "High", fatalities: 50, aboard: 50},
		rec{year: 1990, operator: "High", fatalities: 50, aboard: 50},
		rec{year: 1990, operator: "Mid", fatalities: 10, aboard: 100},
	)

	got := RiskRanking(incs, ByOperator, 0, 0)
	assert.Equal(t, []string{"High", "Mid", "Low"}, entities(got))

	// Low: 1.5*1 + 0 + 0 = 1.5, filtered by a threshold of 2.
	got = RiskRanking(incs, ByOperator, 2, 0)
	assert.Equal(t, []string{"High", "Mid"}, entities(got))
}

func TestCostRanking(t *testing.T) {
	incs := build(
		rec{year: 1990, operator: "Solo", fatalities: 500, aboard: 500},
		rec{year: 1990, operator: "Pair", fatalities: 1, aboard: 10},
		rec{year: 1991, operator: "Pair", fatalities: 1, aboard: 10},
		rec{year: 1990, operator: "Big", fatalities: 100, aboard: 200},
		rec{year: 1991, operator: "Big", fatalities: 100, aboard: 200},
		rec{year: 1990, operator: domain.Unknown},
		rec{year: 1991, operator: domain.Unknown},
	)

	got := CostRanking(incs, 0)

	require.Len(t, got, 2)
	assert.Equal(t, "Big", got[0].Entity)
	assert.InDelta(t, 2*50+200*1.5, got[0].EstimatedCostMillions, 1e-9)
	assert.Equal(t, "Pair", got[1].Entity)
}

func entities(entries []ScoreEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Entity
	}
	return out
}
