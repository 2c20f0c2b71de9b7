package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label
	}
	return out
}

func TestDecadeBreakdown_Trend(t *testing.T) {
	incs := build(
		rec{year: 1975, fatalities: 50, aboard: 100},
		rec{year: 1982, fatalities: 10, aboard: 100},
		rec{year: 1995, fatalities: 40, aboard: 100},
		rec{fatalities: 99, aboard: 100},
	)

	got := DecadeBreakdown(incs)

	require.Equal(t, []string{"1970s", "1980s", "1990s"}, labels(got))
	assert.Equal(t, TrendStable, got[0].Trend)
	assert.Equal(t, TrendImproving, got[1].Trend)
	assert.Equal(t, TrendWorsening, got[2].Trend)
	assert.InDelta(t, 50.0, got[0].SurvivalRate, 1e-9)
}

func TestMonthBreakdown_AllMonths(t *testing.T) {
	incs := build(
		rec{date: "1999-03-10"},
		rec{date: "1999-03-11"},
		rec{date: "1999-12-01"},
	)

	got := MonthBreakdown(incs)

	require.Len(t, got, 12)
	assert.Equal(t, "Jan", got[0].Label)
	assert.Equal(t, 2, got[2].Crashes)
	assert.Equal(t, 1, got[11].Crashes)
	assert.Equal(t, 0, got[5].Crashes)
}

func TestDayBreakdown_SkipsUnknownDays(t *testing.T) {
	incs := insightFixture()

	got := DayBreakdown(incs)

	require.Len(t, got, 7)
	assert.Equal(t, "Monday", got[0].Label)
	total := 0
	for _, b := range got {
		total += b.Crashes
	}
	assert.Equal(t, 4, total)
}

func TestSeasonBreakdown_Share(t *testing.T) {
	got := SeasonBreakdown(insightFixture())

	require.Equal(t, []string{"Winter", "Spring", "Summer", "Fall"}, labels(got))
	assert.InDelta(t, 40.0, got[0].Share, 1e-9)
	assert.InDelta(t, 60.0, got[2].Share, 1e-9)
}

func TestRankedBreakdown(t *testing.T) {
	got := RankedBreakdown(insightFixture(), ByCategory, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "Boeing 747", got[0].Label)
	assert.Equal(t, 3, got[0].Crashes)
	assert.Equal(t, "Tu-134", got[1].Label)
}

func TestCauseBreakdown(t *testing.T) {
	incs := build(
		rec{year: 1990, summary: "Engine failure"},
		rec{year: 1990, summary: "Severe storm"},
		rec{year: 1990},
	)

	got := CauseBreakdown(incs)

	require.Len(t, got, 5)
	assert.Equal(t, 1, got[0].Crashes) // Weather
	assert.Equal(t, 1, got[1].Crashes) // Mechanical
	assert.Equal(t, 1, got[4].Crashes) // Other
}

func TestYearBreakdown_SkipsUnknownYear(t *testing.T) {
	incs := build(rec{year: 2001}, rec{})

	got := YearBreakdown(incs)

	require.Len(t, got, 1)
	assert.Equal(t, "2001", got[0].Label)
	assert.InDelta(t, 100.0, got[0].Share, 1e-9)
}
