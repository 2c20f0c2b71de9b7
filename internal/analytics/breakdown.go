package analytics

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// Decade trend labels.
const (
	TrendStable    = "Stable"
	TrendImproving = "Improving"
	TrendWorsening = "Worsening"
)

// Bucket aggregates the incidents sharing one label.
type Bucket struct {
	Label         string  `json:"label"`
	Crashes       int     `json:"crashes"`
	Fatalities    int     `json:"fatalities"`
	Aboard        int     `json:"aboard"`
	AvgFatalities float64 `json:"avg_fatalities"`
	SurvivalRate  float64 `json:"survival_rate"`
	FatalityRate  float64 `json:"fatality_rate"`
	Share         float64 `json:"share"`
	Trend         string  `json:"trend,omitempty"`
}

func newBucket(label string, incs []domain.Incident, total int) Bucket {
	t := Total(incs)
	return Bucket{
		Label:         label,
		Crashes:       t.Incidents,
		Fatalities:    t.Fatalities,
		Aboard:        t.Aboard,
		AvgFatalities: Rate(float64(t.Fatalities), float64(t.Incidents)),
		SurvivalRate:  t.SurvivalRate(),
		FatalityRate:  t.FatalityRate(),
		Share:         Percent(float64(t.Incidents), float64(total)),
	}
}

// Breakdown builds one bucket per group, in group order.
func Breakdown[K comparable](incs []domain.Incident, groups *OrderedMap[K, []domain.Incident], label func(K) string) []Bucket {
	out := make([]Bucket, 0, groups.Len())
	for _, e := range groups.Entries() {
		out = append(out, newBucket(label(e.Key), e.Value, len(incs)))
	}
	return out
}

// fixedBreakdown emits a bucket for every label in order, empty ones included.
func fixedBreakdown(incs []domain.Incident, labels []string, key func(domain.Incident) string) []Bucket {
	groups := GroupBy(incs, key)
	out := make([]Bucket, 0, len(labels))
	for _, l := range labels {
		g, _ := groups.Get(l)
		out = append(out, newBucket(l, g, len(incs)))
	}
	return out
}

// YearBreakdown buckets known years in ascending order.
func YearBreakdown(incs []domain.Incident) []Bucket {
	known := knownYears(incs)
	return Breakdown(known, SortKeys(GroupBy(known, ByYear)), strconv.Itoa)
}

// DecadeBreakdown buckets known decades in ascending order and labels each
// with its fatality-rate trend against the previous decade.
func DecadeBreakdown(incs []domain.Incident) []Bucket {
	known := knownYears(incs)
	out := Breakdown(known, SortKeys(GroupBy(known, ByDecade)), func(d int) string { return strconv.Itoa(d) + "s" })
	for i := range out {
		switch {
		case i == 0:
			out[i].Trend = TrendStable
		case out[i].FatalityRate < out[i-1].FatalityRate:
			out[i].Trend = TrendImproving
		default:
			out[i].Trend = TrendWorsening
		}
	}
	return out
}

// MonthBreakdown buckets all twelve months, January first.
func MonthBreakdown(incs []domain.Incident) []Bucket {
	labels := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		labels[m-1] = m.String()[:3]
	}
	return fixedBreakdown(incs, labels, func(i domain.Incident) string { return time.Month(i.Month).String()[:3] })
}

// SeasonBreakdown buckets the four seasons in calendar order.
func SeasonBreakdown(incs []domain.Incident) []Bucket {
	return fixedBreakdown(incs, domain.Seasons, BySeason)
}

// DayBreakdown buckets the seven weekdays, Monday first. Incidents without
// an exact date are not counted.
func DayBreakdown(incs []domain.Incident) []Bucket {
	return fixedBreakdown(incs, domain.Weekdays, ByDay)
}

// CauseBreakdown buckets every cause class in reporting order.
func CauseBreakdown(incs []domain.Incident) []Bucket {
	return fixedBreakdown(incs, domain.Causes, ByCause)
}

// RankedBreakdown buckets by key, largest first (ties by label), keeping n.
func RankedBreakdown(incs []domain.Incident, key func(domain.Incident) string, n int) []Bucket {
	out := Breakdown(incs, GroupBy(incs, key), func(s string) string { return s })
	slices.SortStableFunc(out, func(a, b Bucket) int {
		return cmp.Or(cmp.Compare(b.Crashes, a.Crashes), cmp.Compare(a.Label, b.Label))
	})
	return limit(out, n)
}

func knownYears(incs []domain.Incident) []domain.Incident {
	return slices.DeleteFunc(slices.Clone(incs), func(i domain.Incident) bool { return i.Year == 0 })
}
