// Package export writes incident record sets in tabular formats with a fixed
// column order.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// ErrUnsupportedFormat is returned for formats this package does not produce.
// Rendered images belong to the charting collaborator.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export encoding.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Incidents"

// Columns is the export column order.
var Columns = []string{
	"id", "date", "year", "location", "country", "operator", "category",
	"fatalities", "aboard", "aboard_estimated", "ground", "ground_estimated",
	"latitude", "longitude", "geo_source", "season", "day_name", "cause", "summary",
}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the media type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename is a download name for an export generated at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("incidents-%s.%s", t.UTC().Format("20060102-150405"), f)
}

// Write encodes incs to w in format f.
func Write(w io.Writer, f Format, incs []domain.Incident) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, incs)
	case FormatJSON:
		return writeJSON(w, incs)
	case FormatXLSX:
		return writeXLSX(w, incs)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Values returns the typed cell values of inc in Columns order. Coordinates
// are empty for records without a valid pair.
func Values(inc domain.Incident) []any {
	var lat, lon any = "", ""
	if inc.HasCoords {
		lat, lon = inc.Geo.Lat, inc.Geo.Lon
	}
	date := ""
	if !inc.Date.IsZero() {
		date = inc.Date.Format(time.DateOnly)
	}
	return []any{
		inc.ID, date, inc.Year, inc.Location, inc.Country, inc.Operator, inc.Category,
		inc.Fatalities, inc.Aboard, inc.AboardEstimated, inc.Ground, inc.GroundEstimated,
		lat, lon, inc.GeoSource, inc.Season, inc.DayName, inc.Cause, inc.Summary,
	}
}

func writeCSV(w io.Writer, incs []domain.Incident) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(Columns))
	for _, inc := range incs {
		for i, v := range Values(inc) {
			row[i] = formatCell(v)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv writer: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, incs []domain.Incident) error {
	rows := make([]*analytics.OrderedMap[string, any], len(incs))
	for i, inc := range incs {
		row := analytics.NewOrderedMap[string, any]()
		for j, v := range Values(inc) {
			row.Set(Columns[j], v)
		}
		rows[i] = row
	}
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, incs []domain.Incident) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, inc := range incs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := Values(inc)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
