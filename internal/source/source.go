// Package source loads raw incident rows from files, HTTP endpoints, or a
// deterministic synthetic generator.
package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// ErrNoRecords is returned when a source is reachable but yields no rows.
var ErrNoRecords = errors.New("source contains no records")

// Loader produces the raw rows of one dataset.
type Loader interface {
	Load(ctx context.Context) ([]domain.RawIncident, error)
	Name() string
}

// Format is an encoding of a tabular dataset.
type Format string

// Supported dataset formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromName infers the format from a file name or URL path extension.
// Anything unrecognized is treated as JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatJSON
	}
}

// formatFromContentType maps a response media type onto a format. ok is false
// for generic types that say nothing about the payload.
func formatFromContentType(contentType string) (Format, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch mediaType {
	case "text/csv", "application/csv":
		return FormatCSV, true
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX, true
	case "application/json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// Decode parses a dataset in the given format. Structurally invalid input is an
// error; individual malformed values are left for normalization to absorb.
func Decode(r io.Reader, format Format) ([]domain.RawIncident, error) {
	var (
		raws []domain.RawIncident
		err  error
	)
	switch format {
	case FormatCSV:
		raws, err = decodeCSV(r)
	case FormatXLSX:
		raws, err = decodeXLSX(r)
	default:
		raws, err = decodeJSON(r)
	}
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrNoRecords
	}
	return raws, nil
}

func decodeJSON(r io.Reader) ([]domain.RawIncident, error) {
	var raws []domain.RawIncident
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return raws, nil
}

func decodeCSV(r io.Reader) ([]domain.RawIncident, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows), nil
}

func decodeXLSX(r io.Reader) ([]domain.RawIncident, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("open xlsx: no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return fromRows(rows), nil
}

// fromRows maps header-keyed rows onto raw incidents. Short rows leave the
// missing trailing columns empty; blank rows are skipped.
func fromRows(rows [][]string) []domain.RawIncident {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	out := make([]domain.RawIncident, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		out = append(out, domain.RawIncidentFromFields(fields))
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
