package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	incs := build(
		rec{year: 1990, category: "B"},
		rec{year: 1980, category: "A"},
		rec{year: 1990, category: "C"},
		rec{year: 1970, category: "A"},
	)

	groups := GroupBy(incs, ByCategory)

	assert.Equal(t, []string{"B", "A", "C"}, groups.Keys())
	a, ok := groups.Get("A")
	require.True(t, ok)
	assert.Equal(t, []int{1980, 1970}, Pluck(a, ByYear))
}

func TestGroupBy_PartitionsEverything(t *testing.T) {
	inputs := [][]domain.Incident{
		nil,
		scenario(),
		filterFixture(),
	}
	keys := []func(domain.Incident) string{ByCategory, ByOperator, BySeason, ByDay, ByCountry}

	for _, incs := range inputs {
		for _, key := range keys {
			total := 0
			for _, g := range GroupBy(incs, key).Values() {
				total += len(g)
			}
			assert.Equal(t, len(incs), total)
		}
	}
}

func TestCountBy(t *testing.T) {
	counts := CountBy([]string{"x", "y", "x", "z", "x"})

	assert.Equal(t, []string{"x", "y", "z"}, counts.Keys())
	assert.Equal(t, []int{3, 1, 1}, counts.Values())

	empty := CountBy([]string(nil))
	assert.Equal(t, 0, empty.Len())
}

func TestOrderedMap_SetKeepsPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	assert.Equal(t, []Entry[string, int]{{"a", 3}, {"b", 2}}, m.Entries())
}

func TestOrderedMap_SortKeysCopies(t *testing.T) {
	m := NewOrderedMap[int, string]()
	m.Set(2000, "b")
	m.Set(1990, "a")

	sorted := SortKeys(m)

	assert.Equal(t, []int{1990, 2000}, sorted.Keys())
	assert.Equal(t, []int{2000, 1990}, m.Keys())
}

func TestOrderedMap_MarshalJSON(t *testing.T) {
	m := NewOrderedMap[int, int]()
	m.Set(2001, 1)
	m.Set(1999, 4)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"2001":1,"1999":4}`, string(b))
}
