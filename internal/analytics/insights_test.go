package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

func insightFixture() []domain.Incident {
	return build(
		rec{date: "1985-08-12", operator: "JAL", category: "Boeing 747", fatalities: 520, aboard: 524},
		rec{date: "1986-01-15", operator: "Aeroflot", category: "Tu-134", fatalities: 70, aboard: 80},
		rec{date: "2003-07-01", operator: "Aeroflot", category: "Tu-154", fatalities: 0, aboard: 200},
		rec{date: "2004-07-02", operator: "Air X", category: "Boeing 747", fatalities: 520, aboard: 600},
		rec{year: 1950, operator: "Aeroflot", category: "Boeing 747", fatalities: 5},
	)
}

func byTitle(insights []Insight) map[string]string {
	out := make(map[string]string, len(insights))
	for _, in := range insights {
		out[in.Title] = in.Text
	}
	return out
}

func TestGenerateInsights(t *testing.T) {
	got := byTitle(GenerateInsights(insightFixture()))

	assert.Equal(t, "1950 had only 1 crashes, the safest year on record.", got["Safest Year"])
	assert.Contains(t, got["Leading Aircraft Type"], "Boeing 747")
	assert.Contains(t, got["Most Incidents"], "Aeroflot has the most recorded incidents with 3 crashes")
	assert.Equal(t, "21.4% of people aboard survived.", got["Overall Survival Rate"])
	assert.NotContains(t, got["Day Pattern"], domain.Unknown)
	assert.Contains(t, got["Seasonal Pattern"], "Summer")
	assert.Contains(t, got["Safety Improvement"], "rose by 100.0%")
	assert.Equal(t, "21 ground casualties recorded.", got["Ground Impact"])
	assert.Equal(t, "The deadliest crash had 520 fatalities (JAL, 1985).", got["Deadliest Incident"])
	assert.Equal(t, "200 out of 200 survived a crash, a 100.0% survival rate.", got["Miracle Survival"])
}

func TestGenerateInsights_SafetyImprovementPerYear(t *testing.T) {
	var recs []rec
	for y := 1980; y < 1990; y++ {
		recs = append(recs, rec{year: y, fatalities: 1})
	}
	// Ten crashes over 2000-2019 is half the 1980s yearly rate.
	for y := 2000; y < 2018; y += 2 {
		recs = append(recs, rec{year: y, fatalities: 1})
	}
	recs = append(recs, rec{year: 2019, fatalities: 1})
	got := byTitle(GenerateInsights(build(recs...)))

	assert.Equal(t, "Crashes per year fell by 50.0% from the 1980s to the years since 2000.", got["Safety Improvement"])
}

func TestGenerateInsights_Empty(t *testing.T) {
	got := GenerateInsights(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateInsights_UnknownYearsOnly(t *testing.T) {
	got := byTitle(GenerateInsights(build(rec{fatalities: 3})))

	assert.NotContains(t, got, "Safest Year")
	assert.NotContains(t, got, "Day Pattern")
	assert.NotContains(t, got, "Miracle Survival")
	assert.Equal(t, "The deadliest crash had 3 fatalities (Unknown, year unknown).", got["Deadliest Incident"])
}

func TestGenerateInsights_DoesNotMutateInput(t *testing.T) {
	incs := insightFixture()
	before := append([]domain.Incident(nil), incs...)

	GenerateInsights(incs)

	assert.Equal(t, before, incs)
}
