// Command genmock writes the deterministic demo dataset to a fixture file and
// prints summary statistics of its normalized form. The output format follows
// the file extension (.json or .csv).
//
// Usage:
//
//	go run ./cmd/genmock -seed 1908 -size 500 -out data/incidents.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/source"
)

// rawColumns is the CSV header, matching the upstream dataset's column names.
var rawColumns = []string{
	"Date", "Year", "Location", "Country", "Operator", "Type",
	"Aboard", "Fatalities", "Ground", "Latitude", "Longitude", "Summary",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	seed := flag.Uint64("seed", 1908, "generator seed")
	size := flag.Int("size", 500, "number of records")
	out := flag.String("out", "", "output path (.json or .csv)")
	flag.Parse()

	if *out == "" || *size <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -size > 0")
	}

	raws := source.Generate(*seed, *size)
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var err error
	switch source.FormatFromName(*out) {
	case source.FormatCSV:
		err = writeCSV(*out, raws)
	case source.FormatJSON:
		err = writeJSON(*out, raws)
	default:
		err = fmt.Errorf("unsupported output format for %s", *out)
	}
	if err != nil {
		return err
	}
	log.Printf("wrote %d records to %s (seed %d)", len(raws), *out, *seed)

	printStats(domain.NormalizeAll(raws))
	return nil
}

func writeJSON(path string, raws []domain.RawIncident) error {
	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // fixture file, not sensitive
}

func writeCSV(path string, raws []domain.RawIncident) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rawColumns); err != nil {
		return err
	}
	for _, r := range raws {
		row := []string{
			r.Date.String(), r.Year.String(), r.Location.String(), r.Country.String(),
			r.Operator.String(), r.Type.String(), r.Aboard.String(), r.Fatalities.String(),
			r.Ground.String(), r.Latitude.String(), r.Longitude.String(), r.Summary.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printStats(incs []domain.Incident) {
	o := analytics.BuildOverview(incs)
	fmt.Println()
	fmt.Println("=== Demo Dataset Stats ===")
	fmt.Printf("Incidents:        %d (%d-%d)\n", o.Incidents, o.FirstYear, o.LastYear)
	fmt.Printf("Fatalities:       %d\n", o.Fatalities)
	fmt.Printf("Aboard:           %d (%d estimated records)\n", o.Aboard, o.EstimatedAboard)
	fmt.Printf("Survival rate:    %.1f%%\n", o.SurvivalRate)
	fmt.Printf("With coordinates: %d\n", o.WithCoordinates)
	fmt.Printf("Operators:        %d\n", o.Operators)

	fmt.Println("\nBy cause:")
	for _, b := range analytics.CauseBreakdown(incs) {
		fmt.Printf("  %-12s %4d\n", b.Label, b.Crashes)
	}
}
