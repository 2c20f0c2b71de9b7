// Package domain models historical aviation incident records.
//
// # Data Source
//
// Incident records arrive as loosely typed rows, either a JSON array of objects
// or a CSV file with a header row, shaped like the public "Airplane Crashes and
// Fatalities Since 1908" dataset:
//
//	{"Date": "09/17/1908", "Location": "Fort Myer, Virginia", "Operator": "Military - U.S. Army",
//	 "Type": "Wright Flyer III", "Aboard": "2", "Fatalities": "1", "Ground": "0", "Summary": "..."}
//
// Any field may be missing, empty, a number, or a string. [Loose] absorbs all
// of these so decoding a structurally valid row never fails.
//
// # Normalization
//
// [Normalize] turns a [RawIncident] into a canonical [Incident] with every
// derived field populated. It never fails: missing or malformed values are
// replaced by documented defaults.
//
//	Year:       integer in [1000, 9999], else 0 (unknown)
//	Date:       exact source date when it agrees with Year, else 1 January of Year
//	Location:   "Unknown" when empty; Country and Category likewise
//	Operator:   explicit Operator, else the text before the first comma in Location
//	Aboard:     supplied value raised to at least Fatalities, else Fatalities + 10
//	Ground:     supplied value, else Fatalities / 50
//	Season:     meteorological (northern hemisphere): DJF Winter, MAM Spring, JJA Summer, SON Fall
//	Decade:     floor(Year/10)*10
//	DayName:    weekday of an exact source date, else "Unknown"
//	Cause:      keyword class of the source summary (Weather, Mechanical, Human Error, Fire, Other)
//
// Estimated values are pure functions of other fields, so normalization is
// idempotent: Normalize(inc.Raw(), inc.ID) reproduces inc exactly. The
// AboardEstimated and GroundEstimated flags record which records used a
// fallback, since the upstream dataset carries aboard counts inconsistently.
//
// # Coordinates
//
// Latitude/Longitude are optional. Records without a valid pair (absent,
// unparsable, out of range, or exactly 0,0) keep HasCoords=false and are left
// out of geospatial views while still counting everywhere else. Optional
// geocoding enrichment ([EnrichWithGeocoding]) may resolve coordinates from
// the location text after normalization.
package domain
