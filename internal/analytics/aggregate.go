package analytics

import "github.com/couchcryptid/incident-analytics-service/internal/domain"

// GroupBy partitions items by key in one pass. Groups appear in the order
// their key was first seen and each group keeps input order.
func GroupBy[T any, K comparable](items []T, key func(T) K) *OrderedMap[K, []T] {
	groups := NewOrderedMap[K, []T]()
	for _, it := range items {
		k := key(it)
		g, _ := groups.Get(k)
		groups.Set(k, append(g, it))
	}
	return groups
}

// CountBy counts occurrences of each value, in first-seen order.
func CountBy[V comparable](values []V) *OrderedMap[V, int] {
	counts := NewOrderedMap[V, int]()
	for _, v := range values {
		n, _ := counts.Get(v)
		counts.Set(v, n+1)
	}
	return counts
}

// Pluck projects each incident through f.
func Pluck[V any](incs []domain.Incident, f func(domain.Incident) V) []V {
	out := make([]V, len(incs))
	for i, inc := range incs {
		out[i] = f(inc)
	}
	return out
}

// Key functions for the common groupings.
var (
	ByYear     = func(i domain.Incident) int { return i.Year }
	ByDecade   = func(i domain.Incident) int { return i.Decade }
	ByMonth    = func(i domain.Incident) int { return i.Month }
	BySeason   = func(i domain.Incident) string { return i.Season }
	ByDay      = func(i domain.Incident) string { return i.DayName }
	ByCategory = func(i domain.Incident) string { return i.Category }
	ByOperator = func(i domain.Incident) string { return i.Operator }
	ByCountry  = func(i domain.Incident) string { return i.Country }
	ByCause    = func(i domain.Incident) string { return i.Cause }
)
