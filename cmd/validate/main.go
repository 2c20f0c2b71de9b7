// Command validate performs data integrity checks on an incident dataset
// file (JSON, CSV or XLSX). It verifies that every row normalizes into a
// record that satisfies the canonical invariants, that normalization is
// idempotent, and that the derived views agree with the raw totals.
//
// Usage:
//
//	go run ./cmd/validate -data data/incidents.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/source"
)

// maxReported caps the detailed errors listed per phase.
const maxReported = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the incident dataset (.json, .csv or .xlsx)")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath string) int {
	fmt.Println("=== Incident Data Integrity Validation ===")
	fmt.Println()

	loader := source.NewFileLoader(dataPath)
	raws, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", loader.Name(), err)
		return 1
	}
	incs := domain.NormalizeAll(raws)

	// ── Run validation phases ──
	phases := []*phase{
		validateInvariants(incs),
		validateIdempotence(incs),
		validateCoordinates(incs),
		validateFilter(incs),
		validateViews(incs),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	estimated := 0
	for _, inc := range incs {
		if inc.AboardEstimated {
			estimated++
		}
	}
	fmt.Println()
	fmt.Printf("Records: %d raw rows, %d normalized, %d with estimated aboard\n",
		len(raws), len(incs), estimated)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Canonical invariants ──

func validateInvariants(incs []domain.Incident) *phase {
	p := &phase{name: "Phase 1: Normalization invariants"}
	for _, inc := range incs {
		if inc.Fatalities < 0 || inc.Ground < 0 {
			p.errorf("row %d: negative count (fatalities=%d ground=%d)", inc.ID, inc.Fatalities, inc.Ground)
		}
		if inc.Aboard < inc.Fatalities {
			p.errorf("row %d: aboard %d < fatalities %d", inc.ID, inc.Aboard, inc.Fatalities)
		}
		if inc.Year != 0 && (inc.Year < 1000 || inc.Year > 9999) {
			p.errorf("row %d: year %d out of range", inc.ID, inc.Year)
		}
		if inc.Decade != domain.DecadeOf(inc.Year) {
			p.errorf("row %d: decade %d does not match year %d", inc.ID, inc.Decade, inc.Year)
		}
		if !slices.Contains(domain.Seasons, inc.Season) {
			p.errorf("row %d: unknown season %q", inc.ID, inc.Season)
		}
		if !slices.Contains(domain.Causes, inc.Cause) {
			p.errorf("row %d: unknown cause %q", inc.ID, inc.Cause)
		}
		if inc.DateExact && inc.Date.Year() != inc.Year {
			p.errorf("row %d: exact date %s disagrees with year %d", inc.ID, inc.Date.Format("2006-01-02"), inc.Year)
		}
		for field, v := range map[string]string{
			"location": inc.Location, "country": inc.Country, "operator": inc.Operator,
			"category": inc.Category, "day_name": inc.DayName, "summary": inc.Summary,
		} {
			if v == "" {
				p.errorf("row %d: empty %s", inc.ID, field)
			}
		}
	}
	return p
}

// ── Phase 2: Idempotence ──

func validateIdempotence(incs []domain.Incident) *phase {
	p := &phase{name: "Phase 2: Normalization idempotence"}
	for _, inc := range incs {
		again := domain.Normalize(inc.Raw(), inc.ID)
		if diff := cmp.Diff(inc, again); diff != "" {
			p.errorf("row %d: renormalization differs (-first +second):\n%s", inc.ID, diff)
		}
	}
	return p
}

// ── Phase 3: Coordinates ──

func validateCoordinates(incs []domain.Incident) *phase {
	p := &phase{name: "Phase 3: Coordinate validity"}
	for _, inc := range incs {
		if !inc.HasCoords {
			if inc.GeoSource != domain.GeoSourceNone {
				p.errorf("row %d: geo source %q without coordinates", inc.ID, inc.GeoSource)
			}
			continue
		}
		if math.Abs(inc.Geo.Lat) > 90 || math.Abs(inc.Geo.Lon) > 180 {
			p.errorf("row %d: coordinates %.4f,%.4f out of range", inc.ID, inc.Geo.Lat, inc.Geo.Lon)
		}
		if inc.Geo.Lat == 0 && inc.Geo.Lon == 0 {
			p.errorf("row %d: placeholder 0,0 coordinates accepted", inc.ID)
		}
	}
	return p
}

// ── Phase 4: Filter consistency ──

func validateFilter(incs []domain.Incident) *phase {
	p := &phase{name: "Phase 4: Filter consistency"}

	all := analytics.AllIncidents().Apply(incs)
	if len(all) != len(incs) {
		p.errorf("AllIncidents matched %d of %d records", len(all), len(incs))
	}

	// Splitting the year range must partition the record set.
	early := analytics.AllIncidents()
	early.MaxYear = 1969
	late := analytics.AllIncidents()
	late.MinYear = 1970
	if got := len(early.Apply(incs)) + len(late.Apply(incs)); got != len(incs) {
		p.errorf("year split covers %d of %d records", got, len(incs))
	}

	severe := analytics.AllIncidents()
	severe.MinFatalities = 1
	for _, inc := range severe.Apply(incs) {
		if inc.Fatalities < 1 {
			p.errorf("row %d: min_fatalities filter kept %d fatalities", inc.ID, inc.Fatalities)
		}
	}
	return p
}

// ── Phase 5: View derivation ──

func validateViews(incs []domain.Incident) *phase {
	p := &phase{name: "Phase 5: View derivation"}
	opts := analytics.DefaultViewOptions()

	for _, kind := range analytics.ViewKinds {
		v, err := analytics.BuildView(kind, incs, opts)
		if err != nil {
			p.errorf("view %s: %v", kind, err)
			continue
		}
		if v.Records != len(incs) {
			p.errorf("view %s: records %d, want %d", kind, v.Records, len(incs))
		}
	}

	totals := analytics.Total(incs)
	for name, buckets := range map[string][]analytics.Bucket{
		"causes":  analytics.CauseBreakdown(incs),
		"seasons": analytics.SeasonBreakdown(incs),
	} {
		crashes, fatalities := 0, 0
		for _, b := range buckets {
			crashes += b.Crashes
			fatalities += b.Fatalities
		}
		if crashes != totals.Incidents || fatalities != totals.Fatalities {
			p.errorf("%s breakdown sums to %d crashes/%d fatalities, want %d/%d",
				name, crashes, fatalities, totals.Incidents, totals.Fatalities)
		}
	}
	return p
}
