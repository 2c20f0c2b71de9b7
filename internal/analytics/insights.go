package analytics

import (
	"fmt"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

const (
	miracleMinAboard   = 50
	miracleMinSurvival = 90.0
)

// Insight is a short factual statement for display.
type Insight struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// GenerateInsights summarizes notable facts about incs. Empty input yields an
// empty list.
func GenerateInsights(incs []domain.Incident) []Insight {
	out := []Insight{}
	if len(incs) == 0 {
		return out
	}

	if years := YearlySeries(incs); len(years) > 0 {
		lo, hi := extremes(years)
		out = append(out,
			Insight{"Safest Year", fmt.Sprintf("%d had only %.0f crashes, the safest year on record.", lo.Period, lo.Value)},
			Insight{"Most Dangerous Year", fmt.Sprintf("%d recorded %.0f crashes, the highest in the data set.", hi.Period, hi.Value)},
		)
	}

	if cat, n, ok := leader(CountBy(Pluck(incs, ByCategory))); ok {
		out = append(out, Insight{"Leading Aircraft Type", fmt.Sprintf("%s appears in more incidents than any other type (%d).", cat, n)})
	}
	if op, n, ok := leader(CountBy(Pluck(incs, ByOperator))); ok {
		out = append(out, Insight{"Most Incidents", fmt.Sprintf("%s has the most recorded incidents with %d crashes.", op, n)})
	}

	t := Total(incs)
	out = append(out, Insight{"Overall Survival Rate", fmt.Sprintf("%.1f%% of people aboard survived.", t.SurvivalRate())})

	if days := knownDays(incs); len(days) > 0 {
		counts := CountBy(days)
		most, mostN, _ := leader(counts)
		least, leastN := trailer(counts)
		out = append(out, Insight{"Day Pattern", fmt.Sprintf("%s has the most crashes (%d), while %s has the fewest (%d).", most, mostN, least, leastN)})
	}

	if season, n, ok := leader(CountBy(Pluck(incs, BySeason))); ok {
		out = append(out, Insight{"Seasonal Pattern", fmt.Sprintf("%s is the most dangerous season with %d crashes recorded.", season, n)})
	}

	if pct, ok := improvement(incs); ok {
		verb := "fell"
		if pct < 0 {
			verb, pct = "rose", -pct
		}
		out = append(out, Insight{"Safety Improvement", fmt.Sprintf("Crashes per year %s by %.1f%% from the 1980s to the years since 2000.", verb, pct)})
	}

	out = append(out, Insight{"Ground Impact", fmt.Sprintf("%d ground casualties recorded.", t.Ground)})

	worst := incs[0]
	for _, inc := range incs[1:] {
		if inc.Fatalities > worst.Fatalities {
			worst = inc
		}
	}
	out = append(out, Insight{"Deadliest Incident", fmt.Sprintf("The deadliest crash had %d fatalities (%s, %s).", worst.Fatalities, worst.Operator, yearLabel(worst.Year))})

	for _, inc := range incs {
		rate := Percent(float64(inc.Survivors()), float64(inc.Aboard))
		if inc.Aboard > miracleMinAboard && rate > miracleMinSurvival {
			out = append(out, Insight{"Miracle Survival", fmt.Sprintf("%d out of %d survived a crash, a %.1f%% survival rate.", inc.Survivors(), inc.Aboard, rate)})
			break
		}
	}
	return out
}

// extremes returns the first minimum and first maximum of a series.
func extremes(series []Point) (lo, hi Point) {
	lo, hi = series[0], series[0]
	for _, p := range series[1:] {
		if p.Value < lo.Value {
			lo = p
		}
		if p.Value > hi.Value {
			hi = p
		}
	}
	return lo, hi
}

// leader returns the key with the highest count, first seen on ties.
func leader[K comparable](counts *OrderedMap[K, int]) (K, int, bool) {
	var best K
	n := -1
	for _, e := range counts.Entries() {
		if e.Value > n {
			best, n = e.Key, e.Value
		}
	}
	return best, n, n >= 0
}

// trailer returns the key with the lowest count, first seen on ties.
func trailer[K comparable](counts *OrderedMap[K, int]) (K, int) {
	var worst K
	n := -1
	for _, e := range counts.Entries() {
		if n < 0 || e.Value < n {
			worst, n = e.Key, e.Value
		}
	}
	return worst, n
}

func knownDays(incs []domain.Incident) []string {
	var out []string
	for _, inc := range incs {
		if inc.DayName != domain.Unknown {
			out = append(out, inc.DayName)
		}
	}
	return out
}

// improvement compares average crashes per year in the 1980s with the
// average from 2000 through the latest recorded year, and returns the
// percentage decrease.
func improvement(incs []domain.Incident) (float64, bool) {
	var older, recent int
	latest := 0
	for _, inc := range incs {
		switch {
		case inc.Decade == 1980:
			older++
		case inc.Year >= 2000:
			recent++
			latest = max(latest, inc.Year)
		}
	}
	if older == 0 || recent == 0 {
		return 0, false
	}
	olderRate := float64(older) / 10
	recentRate := float64(recent) / float64(latest-2000+1)
	return Percent(olderRate-recentRate, olderRate), true
}

func yearLabel(year int) string {
	if year == 0 {
		return "year unknown"
	}
	return fmt.Sprint(year)
}
