package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Unknown is the fallback for every free-text field.
const Unknown = "Unknown"

// Loose is a raw field value that accepts JSON strings, numbers, booleans and
// null. Non-string literals keep their JSON text, e.g. 12 becomes "12".
type Loose string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Loose(s)
		return nil
	}
	*l = Loose(b)
	return nil
}

func (l Loose) String() string { return strings.TrimSpace(string(l)) }

// RawIncident is one upstream row before normalization.
type RawIncident struct {
	Date       Loose `json:"Date,omitempty"`
	Year       Loose `json:"Year,omitempty"`
	Location   Loose `json:"Location,omitempty"`
	Country    Loose `json:"Country,omitempty"`
	Operator   Loose `json:"Operator,omitempty"`
	Type       Loose `json:"Type,omitempty"`
	Fatalities Loose `json:"Fatalities,omitempty"`
	Aboard     Loose `json:"Aboard,omitempty"`
	Ground     Loose `json:"Ground,omitempty"`
	Latitude   Loose `json:"Latitude,omitempty"`
	Longitude  Loose `json:"Longitude,omitempty"`
	Summary    Loose `json:"Summary,omitempty"`
}

// RawIncidentFromFields maps a column-name → value row (e.g. a CSV row keyed
// by its header) onto a RawIncident. Column names match case-insensitively;
// "lat"/"lon" and "region" are accepted as aliases.
func RawIncidentFromFields(fields map[string]string) RawIncident {
	var raw RawIncident
	for name, value := range fields {
		v := Loose(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			raw.Date = v
		case "year":
			raw.Year = v
		case "location":
			raw.Location = v
		case "country", "region":
			raw.Country = v
		case "operator":
			raw.Operator = v
		case "type", "category":
			raw.Type = v
		case "fatalities":
			raw.Fatalities = v
		case "aboard":
			raw.Aboard = v
		case "ground":
			raw.Ground = v
		case "latitude", "lat":
			raw.Latitude = v
		case "longitude", "lon", "lng":
			raw.Longitude = v
		case "summary":
			raw.Summary = v
		}
	}
	return raw
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geo sources.
const (
	GeoSourceOriginal = "original" // coordinates came with the record
	GeoSourceForward  = "forward"  // resolved from the location text
	GeoSourceFailed   = "failed"   // geocoding was attempted and errored
	GeoSourceNone     = ""
)

// Incident is the canonical, fully populated incident record.
type Incident struct {
	ID        int       `json:"id"`
	Year      int       `json:"year"`
	Date      time.Time `json:"date"`
	DateExact bool      `json:"date_exact"`
	Month     int       `json:"month"`
	Season    string    `json:"season"`
	Decade    int       `json:"decade"`
	DayName   string    `json:"day_name"`

	Location string `json:"location"`
	Country  string `json:"country"`
	Category string `json:"category"`
	Operator string `json:"operator"`

	Fatalities      int  `json:"fatalities"`
	Aboard          int  `json:"aboard"`
	AboardEstimated bool `json:"aboard_estimated"`
	Ground          int  `json:"ground"`
	GroundEstimated bool `json:"ground_estimated"`

	Geo              Geo     `json:"geo"`
	HasCoords        bool    `json:"has_coords"`
	GeoSource        string  `json:"geo_source,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`

	Summary        string `json:"summary"`
	SummaryDerived bool   `json:"summary_derived"`
	Cause          string `json:"cause"`
}

// Survivors is the number of people aboard who survived.
func (i Incident) Survivors() int { return i.Aboard - i.Fatalities }

// Raw converts the incident back into the upstream shape, emitting only
// source-supplied values. Estimated and derived fields are left out so that
// normalizing the result re-derives them identically.
func (i Incident) Raw() RawIncident {
	raw := RawIncident{
		Location:   Loose(i.Location),
		Country:    Loose(i.Country),
		Operator:   Loose(i.Operator),
		Type:       Loose(i.Category),
		Fatalities: Loose(formatInt(i.Fatalities)),
	}
	if i.Year != 0 {
		raw.Year = Loose(formatInt(i.Year))
	}
	if i.DateExact {
		raw.Date = Loose(i.Date.Format(time.DateOnly))
	}
	if !i.AboardEstimated {
		raw.Aboard = Loose(formatInt(i.Aboard))
	}
	if !i.GroundEstimated {
		raw.Ground = Loose(formatInt(i.Ground))
	}
	if i.HasCoords && i.GeoSource == GeoSourceOriginal {
		raw.Latitude = Loose(formatFloat(i.Geo.Lat))
		raw.Longitude = Loose(formatFloat(i.Geo.Lon))
	}
	if !i.SummaryDerived {
		raw.Summary = Loose(i.Summary)
	}
	return raw
}
