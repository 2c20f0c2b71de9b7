package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
)

var errBadRequest = errors.New("bad request")

// parseFilter reads min_year, max_year, region, category and min_fatalities.
// Absent parameters keep the no-constraint defaults; malformed numbers are
// rejected rather than ignored.
func parseFilter(q url.Values) (analytics.Filter, error) {
	f := analytics.AllIncidents()
	ints := []struct {
		name string
		dst  *int
	}{
		{"min_year", &f.MinYear},
		{"max_year", &f.MaxYear},
		{"min_fatalities", &f.MinFatalities},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return analytics.Filter{}, fmt.Errorf("%w: %s must be an integer", errBadRequest, p.name)
		}
		*p.dst = n
	}
	f.Region = q.Get("region")
	if c := q.Get("category"); c != "" {
		f.Category = c
	}
	if err := f.Validate(); err != nil {
		return analytics.Filter{}, err
	}
	return f, nil
}
