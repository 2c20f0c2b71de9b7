package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// AllCategories is the Category value that disables the category constraint.
const AllCategories = "All"

// ErrInvalidFilter is returned by Filter.Validate.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter selects incidents by year range, region, category and severity.
// It is a value type; Apply never modifies its input.
type Filter struct {
	MinYear       int    `json:"min_year"`
	MaxYear       int    `json:"max_year"`
	Region        string `json:"region"`
	Category      string `json:"category"`
	MinFatalities int    `json:"min_fatalities"`
}

// AllIncidents returns the filter that matches every normalized incident,
// including those with the unknown year 0.
func AllIncidents() Filter {
	return Filter{MinYear: 0, MaxYear: 9999, Category: AllCategories}
}

// Validate reports bounds that can never match.
func (f Filter) Validate() error {
	if f.MinYear > f.MaxYear {
		return fmt.Errorf("%w: min_year %d is after max_year %d", ErrInvalidFilter, f.MinYear, f.MaxYear)
	}
	if f.MinFatalities < 0 {
		return fmt.Errorf("%w: min_fatalities must not be negative", ErrInvalidFilter)
	}
	return nil
}

// Match reports whether inc satisfies every constraint.
func (f Filter) Match(inc domain.Incident) bool {
	if inc.Year < f.MinYear || inc.Year > f.MaxYear {
		return false
	}
	if f.Region != "" && !strings.Contains(strings.ToLower(inc.Country), strings.ToLower(f.Region)) {
		return false
	}
	if f.Category != "" && f.Category != AllCategories && f.Category != inc.Category {
		return false
	}
	return inc.Fatalities >= f.MinFatalities
}

// Apply returns the matching incidents in input order. The result is never nil.
func (f Filter) Apply(incs []domain.Incident) []domain.Incident {
	out := make([]domain.Incident, 0, len(incs))
	for _, inc := range incs {
		if f.Match(inc) {
			out = append(out, inc)
		}
	}
	return out
}
