package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AboardEstimatePad is added to Fatalities when a record carries no aboard
// count. The scorer's per-record fallback (F+10) uses the same constant.
const AboardEstimatePad = 10

// groundEstimateDivisor derives a small ground-casualty estimate from fatalities.
const groundEstimateDivisor = 50

const (
	minYear = 1000
	maxYear = 9999
)

// maxCount is the largest accepted count. Larger values are treated as
// malformed, keeping Fatalities+AboardEstimatePad inside a 32-bit int.
const maxCount = 1_000_000_000

// Seasons lists the season labels in calendar order.
var Seasons = []string{"Winter", "Spring", "Summer", "Fall"}

// Weekdays lists day names Monday first, the order used by day-of-week views.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Causes lists cause classes in reporting order.
var Causes = []string{"Weather", "Mechanical", "Human Error", "Fire", "Other"}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Normalize converts a raw row at position index into a canonical Incident.
// It never fails and never consults randomness or the clock.
func Normalize(raw RawIncident, index int) Incident {
	inc := Incident{ID: index}

	date, exact := parseDate(raw.Date.String())
	inc.Year = parseYear(raw.Year.String())
	if inc.Year == 0 && exact {
		inc.Year = date.Year()
	}
	if exact && date.Year() != inc.Year {
		exact = false
	}
	switch {
	case exact:
		inc.Date = date
	case inc.Year != 0:
		inc.Date = time.Date(inc.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	inc.DateExact = exact
	inc.Month = int(inc.Date.Month())
	inc.Season = SeasonOf(inc.Date.Month())
	inc.Decade = DecadeOf(inc.Year)
	inc.DayName = Unknown
	if exact {
		inc.DayName = inc.Date.Weekday().String()
	}

	inc.Location = textOr(raw.Location, Unknown)
	inc.Country = textOr(raw.Country, Unknown)
	inc.Category = textOr(raw.Type, Unknown)
	inc.Operator = textOr(raw.Operator, operatorFromLocation(inc.Location))

	inc.Fatalities, _ = parseCount(raw.Fatalities.String())
	if aboard, ok := parseCount(raw.Aboard.String()); ok {
		inc.Aboard = max(aboard, inc.Fatalities)
	} else {
		inc.Aboard = inc.Fatalities + AboardEstimatePad
		inc.AboardEstimated = true
	}
	if ground, ok := parseCount(raw.Ground.String()); ok {
		inc.Ground = ground
	} else {
		inc.Ground = inc.Fatalities / groundEstimateDivisor
		inc.GroundEstimated = true
	}

	if geo, ok := parseGeo(raw.Latitude.String(), raw.Longitude.String()); ok {
		inc.Geo = geo
		inc.HasCoords = true
		inc.GeoSource = GeoSourceOriginal
	}

	if s := raw.Summary.String(); s != "" {
		inc.Summary = s
		inc.Cause = ClassifyCause(s)
	} else {
		inc.Summary = deriveSummary(inc)
		inc.SummaryDerived = true
		inc.Cause = "Other"
	}
	return inc
}

// NormalizeAll normalizes a sequence, using each row's position as its ID.
func NormalizeAll(raws []RawIncident) []Incident {
	out := make([]Incident, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw, i)
	}
	return out
}

// SeasonOf maps a month to its meteorological season. Defined for all months.
func SeasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Fall"
	}
}

// DecadeOf rounds a year down to a multiple of ten.
func DecadeOf(year int) int {
	return int(math.Floor(float64(year)/10)) * 10
}

// ClassifyCause buckets a free-text summary by keyword, first match wins.
func ClassifyCause(summary string) string {
	s := strings.ToLower(summary)
	switch {
	case strings.Contains(s, "weather") || strings.Contains(s, "storm"):
		return "Weather"
	case strings.Contains(s, "engine") || strings.Contains(s, "mechanical"):
		return "Mechanical"
	case strings.Contains(s, "pilot") || strings.Contains(s, "crew"):
		return "Human Error"
	case strings.Contains(s, "fire"):
		return "Fire"
	default:
		return "Other"
	}
}

func textOr(v Loose, fallback string) string {
	if s := v.String(); s != "" {
		return s
	}
	return fallback
}

// operatorFromLocation takes the text before the first comma, e.g.
// "Fort Myer, Virginia" -> "Fort Myer".
func operatorFromLocation(location string) string {
	head, _, _ := strings.Cut(location, ",")
	if head = strings.TrimSpace(head); head != "" {
		return head
	}
	return Unknown
}

// parseYear accepts integral values in the four-digit range, e.g. "1999" or 1999.0.
func parseYear(s string) int {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || v < minYear || v > maxYear {
		return 0
	}
	return int(v)
}

// parseDate tries the known layouts and truncates the result to a UTC date.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < minYear || t.Year() > maxYear {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// parseCount parses a non-negative count. ok is false when the value is
// absent, not numeric or larger than maxCount; negative numbers clamp to 0.
func parseCount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v > maxCount {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return int(math.Trunc(v)), true
}

func parseGeo(latStr, lonStr string) (Geo, bool) {
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return Geo{}, false
	}
	geo := Geo{Lat: lat, Lon: lon}
	return geo, validGeo(geo)
}

// validGeo rejects out-of-range pairs and the 0,0 placeholder.
func validGeo(g Geo) bool {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) || math.Abs(g.Lat) > 90 || math.Abs(g.Lon) > 180 {
		return false
	}
	return g.Lat != 0 || g.Lon != 0
}

func deriveSummary(inc Incident) string {
	when := "unknown year"
	if inc.Year != 0 {
		when = strconv.Itoa(inc.Year)
	}
	return fmt.Sprintf("%s incident at %s (%s): %d of %d aboard killed",
		inc.Category, inc.Location, when, inc.Fatalities, inc.Aboard)
}

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
