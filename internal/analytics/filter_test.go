package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

func filterFixture() []domain.Incident {
	return build(
		rec{year: 1950, country: "USA", category: "DC-3", fatalities: 20},
		rec{year: 1977, country: "Canary Islands, Spain", category: "Boeing 747", fatalities: 583, aboard: 644},
		rec{year: 1985, country: "Japan", category: "Boeing 747", fatalities: 520, aboard: 524},
		rec{year: 2001, country: "usa", category: "Boeing 767", fatalities: 92, aboard: 92},
		rec{country: "Unknown", fatalities: 0},
	)
}

func TestFilter_Match(t *testing.T) {
	incs := filterFixture()

	tests := []struct {
		name   string
		filter Filter
		want   []int // IDs
	}{
		{"all", AllIncidents(), []int{0, 1, 2, 3, 4}},
		{"year range inclusive", Filter{MinYear: 1977, MaxYear: 1985, Category: AllCategories}, []int{1, 2}},
		{"region case-insensitive", Filter{MinYear: 0, MaxYear: 9999, Region: "UsA", Category: AllCategories}, []int{0, 3}},
		{"region substring", Filter{MinYear: 0, MaxYear: 9999, Region: "spain"}, []int{1}},
		{"category exact", Filter{MinYear: 0, MaxYear: 9999, Category: "Boeing 747"}, []int{1, 2}},
		{"category is not a substring match", Filter{MinYear: 0, MaxYear: 9999, Category: "Boeing"}, []int{}},
		{"min fatalities", Filter{MinYear: 0, MaxYear: 9999, Category: AllCategories, MinFatalities: 100}, []int{1, 2}},
		{"combined", Filter{MinYear: 1980, MaxYear: 2010, Region: "a", Category: "Boeing 747", MinFatalities: 1}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(incs)
			assert.Equal(t, tt.want, Pluck(got, func(i domain.Incident) int { return i.ID }))
		})
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	got := AllIncidents().Apply(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_IdempotentSubset(t *testing.T) {
	incs := filterFixture()
	filters := []Filter{
		AllIncidents(),
		{MinYear: 1970, MaxYear: 1990},
		{MinYear: 0, MaxYear: 9999, Region: "usa", Category: AllCategories, MinFatalities: 50},
		{MinYear: 3000, MaxYear: 2000},
	}

	for _, f := range filters {
		once := f.Apply(incs)
		twice := f.Apply(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("filter %+v not idempotent (-once +twice):\n%s", f, diff)
		}
		for _, inc := range once {
			assert.Contains(t, incs, inc)
		}
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	incs := filterFixture()
	before := append([]domain.Incident(nil), incs...)

	Filter{MinYear: 1980, MaxYear: 2010}.Apply(incs)

	assert.Equal(t, before, incs)
}

func TestFilter_Validate(t *testing.T) {
	require.NoError(t, AllIncidents().Validate())
	assert.ErrorIs(t, Filter{MinYear: 2001, MaxYear: 2000}.Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, Filter{MaxYear: 2000, MinFatalities: -1}.Validate(), ErrInvalidFilter)
}
