package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLocation = "Fort Myer, Virginia"
	testOperator = "Military - U.S. Army"
)

func TestNormalize_FullRecord(t *testing.T) {
	raw := RawIncident{
		Date:       "09/17/1908",
		Location:   testLocation,
		Country:    "USA",
		Operator:   testOperator,
		Type:       "Wright Flyer III",
		Aboard:     "2",
		Fatalities: "1",
		Ground:     "0",
		Latitude:   "38.88",
		Longitude:  "-77.08",
		Summary:    "During a demonstration flight, a propeller separated and the pilot lost control.",
	}

	inc := Normalize(raw, 7)

	assert.Equal(t, 7, inc.ID)
	assert.Equal(t, 1908, inc.Year)
	assert.Equal(t, time.Date(1908, time.September, 17, 0, 0, 0, 0, time.UTC), inc.Date)
	assert.True(t, inc.DateExact)
	assert.Equal(t, 9, inc.Month)
	assert.Equal(t, "Fall", inc.Season)
	assert.Equal(t, 1900, inc.Decade)
	assert.Equal(t, "Thursday", inc.DayName)
	assert.Equal(t, testLocation, inc.Location)
	assert.Equal(t, "USA", inc.Country)
	assert.Equal(t, "Wright Flyer III", inc.Category)
	assert.Equal(t, testOperator, inc.Operator)
	assert.Equal(t, 1, inc.Fatalities)
	assert.Equal(t, 2, inc.Aboard)
	assert.False(t, inc.AboardEstimated)
	assert.Equal(t, 0, inc.Ground)
	assert.False(t, inc.GroundEstimated)
	assert.True(t, inc.HasCoords)
	assert.Equal(t, Geo{Lat: 38.88, Lon: -77.08}, inc.Geo)
	assert.Equal(t, GeoSourceOriginal, inc.GeoSource)
	assert.Equal(t, "Human Error", inc.Cause)
	assert.False(t, inc.SummaryDerived)
	assert.Equal(t, 1, inc.Survivors())
}

func TestNormalize_EmptyRecord(t *testing.T) {
	inc := Normalize(RawIncident{}, 0)

	assert.Equal(t, 0, inc.Year)
	assert.True(t, inc.Date.IsZero())
	assert.False(t, inc.DateExact)
	assert.Equal(t, 0, inc.Decade)
	assert.Equal(t, "Winter", inc.Season)
	assert.Equal(t, Unknown, inc.DayName)
	assert.Equal(t, Unknown, inc.Location)
	assert.Equal(t, Unknown, inc.Country)
	assert.Equal(t, Unknown, inc.Category)
	assert.Equal(t, Unknown, inc.Operator)
	assert.Equal(t, 0, inc.Fatalities)
	assert.Equal(t, AboardEstimatePad, inc.Aboard)
	assert.True(t, inc.AboardEstimated)
	assert.Equal(t, 0, inc.Ground)
	assert.True(t, inc.GroundEstimated)
	assert.False(t, inc.HasCoords)
	assert.Equal(t, GeoSourceNone, inc.GeoSource)
	assert.True(t, inc.SummaryDerived)
	assert.NotEmpty(t, inc.Summary)
	assert.Equal(t, "Other", inc.Cause)
}

func TestNormalize_Invariants(t *testing.T) {
	raws := []RawIncident{
		{},
		{Year: "abc", Fatalities: "-4"},
		{Year: "2000", Fatalities: "10", Aboard: "3"},
		{Year: "1999.0", Fatalities: "1e2"},
		{Year: "12", Date: "not a date"},
		{Date: "2001-07-04T10:30:00Z", Fatalities: "NaN", Aboard: "Inf"},
		{Year: "1975", Date: "1976-03-01", Latitude: "91", Longitude: "10"},
		{Year: "99999", Ground: "x", Latitude: "0", Longitude: "0"},
		{Year: "2000", Fatalities: "1e20", Aboard: "1e20", Ground: "1e300"},
		{Fatalities: "9223372036854775807", Aboard: "-9223372036854775808"},
		{Fatalities: "1000000000", Aboard: "1000000001"},
	}

	for i, raw := range raws {
		inc := Normalize(raw, i)
		assert.GreaterOrEqual(t, inc.Aboard, inc.Fatalities, "row %d", i)
		assert.GreaterOrEqual(t, inc.Fatalities, 0, "row %d", i)
		assert.GreaterOrEqual(t, inc.Ground, 0, "row %d", i)
		assert.Equal(t, (inc.Year/10)*10, inc.Decade, "row %d", i)
		assert.Contains(t, Seasons, inc.Season, "row %d", i)
		assert.True(t, inc.Year == 0 || (inc.Year >= 1000 && inc.Year <= 9999), "row %d", i)
		assert.NotEmpty(t, inc.Location, "row %d", i)
		assert.NotEmpty(t, inc.Operator, "row %d", i)
		assert.NotEmpty(t, inc.DayName, "row %d", i)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []RawIncident{
		{},
		{Date: "1977-03-27", Location: "Tenerife, Canary Islands", Type: "Boeing 747", Fatalities: "583", Aboard: "644"},
		{Year: "1950", Date: "1951-02-02", Location: "Somewhere", Fatalities: "3"},
		{Year: "2000", Location: "Paris, France", Fatalities: "113", Aboard: "50", Latitude: "48.99", Longitude: "2.47"},
		{Year: "1933", Operator: " Imperial Airways ", Summary: "Caught fire in flight."},
	}

	for i, raw := range raws {
		first := Normalize(raw, i)
		second := Normalize(first.Raw(), first.ID)
		assert.Equal(t, first, second, "row %d", i)
	}
}

func TestNormalize_AboardClampedToFatalities(t *testing.T) {
	inc := Normalize(RawIncident{Year: "2000", Fatalities: "10", Aboard: "3"}, 0)
	assert.Equal(t, 10, inc.Aboard)
	assert.False(t, inc.AboardEstimated)
}

func TestNormalize_OversizedCountsFallBack(t *testing.T) {
	inc := Normalize(RawIncident{Year: "2000", Fatalities: "1e20", Aboard: "9223372036854775807"}, 0)

	assert.Equal(t, 0, inc.Fatalities)
	assert.Equal(t, AboardEstimatePad, inc.Aboard)
	assert.True(t, inc.AboardEstimated)
}

func TestNormalize_GroundEstimate(t *testing.T) {
	inc := Normalize(RawIncident{Fatalities: "120"}, 0)
	assert.Equal(t, 2, inc.Ground)
	assert.True(t, inc.GroundEstimated)
	assert.Equal(t, 130, inc.Aboard)
}

func TestNormalize_DateYearDisagreement(t *testing.T) {
	inc := Normalize(RawIncident{Year: "1950", Date: "1951-06-15"}, 0)

	assert.Equal(t, 1950, inc.Year)
	assert.False(t, inc.DateExact)
	assert.Equal(t, time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC), inc.Date)
	assert.Equal(t, Unknown, inc.DayName)
}

func TestNormalize_YearFromDate(t *testing.T) {
	inc := Normalize(RawIncident{Date: "2001-07-04T10:30:00Z"}, 0)

	assert.Equal(t, 2001, inc.Year)
	assert.True(t, inc.DateExact)
	assert.Equal(t, "Summer", inc.Season)
	assert.Equal(t, "Wednesday", inc.DayName)
}

func TestRawIncident_UnmarshalLooseJSON(t *testing.T) {
	data := []byte(`{"Year": 2000, "Fatalities": 10.0, "Aboard": null, "Country": "USA", "Latitude": "40.1", "Longitude": -75.2, "Ground": true}`)

	var raw RawIncident
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, Loose("2000"), raw.Year)
	assert.Equal(t, Loose("10.0"), raw.Fatalities)
	assert.Empty(t, raw.Aboard)
	assert.Equal(t, Loose("-75.2"), raw.Longitude)

	inc := Normalize(raw, 0)
	assert.Equal(t, 2000, inc.Year)
	assert.Equal(t, 10, inc.Fatalities)
	assert.Equal(t, 20, inc.Aboard)
	assert.True(t, inc.AboardEstimated)
	assert.True(t, inc.HasCoords)
	assert.True(t, inc.GroundEstimated)
}

func TestRawIncidentFromFields(t *testing.T) {
	raw := RawIncidentFromFields(map[string]string{
		"Date":     "07/04/2001",
		"location": "Irkutsk, Russia",
		"Region":   "Russia",
		"Category": "Tupolev Tu-154M",
		"lat":      "52.27",
		"LON":      "104.39",
		"ignored":  "x",
	})

	assert.Equal(t, Loose("07/04/2001"), raw.Date)
	assert.Equal(t, Loose("Irkutsk, Russia"), raw.Location)
	assert.Equal(t, Loose("Russia"), raw.Country)
	assert.Equal(t, Loose("Tupolev Tu-154M"), raw.Type)
	assert.Equal(t, Loose("52.27"), raw.Latitude)
	assert.Equal(t, Loose("104.39"), raw.Longitude)
}

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected string
	}{
		{time.January, "Winter"},
		{time.February, "Winter"},
		{time.March, "Spring"},
		{time.May, "Spring"},
		{time.June, "Summer"},
		{time.August, "Summer"},
		{time.September, "Fall"},
		{time.November, "Fall"},
		{time.December, "Winter"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, SeasonOf(tt.month))
		})
	}
}

func TestDecadeOf(t *testing.T) {
	assert.Equal(t, 1990, DecadeOf(1999))
	assert.Equal(t, 2000, DecadeOf(2000))
	assert.Equal(t, 0, DecadeOf(0))
}

func TestOperatorFromLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected string
	}{
		{"city and state", testLocation, "Fort Myer"},
		{"no comma", "Atlantic Ocean", "Atlantic Ocean"},
		{"leading comma", ", Nowhere", Unknown},
		{"unknown", Unknown, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, operatorFromLocation(tt.location))
		})
	}
}

func TestClassifyCause(t *testing.T) {
	tests := []struct {
		summary  string
		expected string
	}{
		{"Crashed in a thunderstorm.", "Weather"},
		{"Bad WEATHER on approach", "Weather"},
		{"Engine failure after takeoff.", "Mechanical"},
		{"Pilot error.", "Human Error"},
		{"The crew lost situational awareness.", "Human Error"},
		{"Cargo fire.", "Fire"},
		{"Shot down.", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyCause(tt.summary))
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"integer", "12", 12, true},
		{"float", "12.9", 12, true},
		{"negative", "-3", 0, true},
		{"empty", "", 0, false},
		{"text", "many", 0, false},
		{"nan", "NaN", 0, false},
		{"at cap", "1000000000", 1_000_000_000, true},
		{"above cap", "1000000001", 0, false},
		{"huge float", "1e20", 0, false},
		{"max int64", "9223372036854775807", 0, false},
		{"huge negative", "-1e20", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCount(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
