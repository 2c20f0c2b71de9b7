package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// DemoLoader generates a synthetic dataset from a fixed seed. The same seed
// and size always produce the same rows.
type DemoLoader struct {
	seed uint64
	size int
}

// NewDemoLoader creates a generator of size rows.
func NewDemoLoader(seed uint64, size int) *DemoLoader {
	return &DemoLoader{seed: seed, size: size}
}

// Name implements Loader.
func (l *DemoLoader) Name() string { return "demo:" + strconv.FormatUint(l.seed, 10) }

// Load implements Loader.
func (l *DemoLoader) Load(ctx context.Context) ([]domain.RawIncident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.size <= 0 {
		return nil, ErrNoRecords
	}
	return Generate(l.seed, l.size), nil
}

type demoPlace struct {
	location, country string
	lat, lon          float64
}

var demoPlaces = []demoPlace{
	{"Fort Myer, Virginia", "USA", 38.88, -77.08},
	{"Los Angeles, California", "USA", 34.05, -118.24},
	{"New York, New York", "USA", 40.71, -74.01},
	{"Dallas, Texas", "USA", 32.78, -96.80},
	{"Miami, Florida", "USA", 25.76, -80.19},
	{"Frankfurt, Germany", "Germany", 50.11, 8.68},
	{"Paris, France", "France", 48.86, 2.35},
	{"London, England", "United Kingdom", 51.51, -0.13},
	{"Toronto, Canada", "Canada", 43.65, -79.38},
	{"Tokyo, Japan", "Japan", 35.68, 139.69},
	{"Irkutsk, Russia", "Russia", 52.29, 104.28},
	{"Guangzhou, China", "China", 23.13, 113.26},
	{"Tenerife, Canary Islands", "Spain", 28.29, -16.63},
	{"Near Honolulu, Hawaii", "USA", 21.31, -157.86},
}

var demoOperators = []string{
	"Aeroflot", "Military - U.S. Air Force", "Air France", "Deutsche Lufthansa",
	"United Air Lines", "Pan American World Airways", "American Airlines",
	"China National Aviation Corporation", "Japan Air Lines", "Private",
}

var demoTypes = []string{
	"Douglas DC-3", "Douglas C-47", "Boeing 707", "Boeing 727", "Boeing 737",
	"Lockheed Constellation", "Tupolev Tu-134", "de Havilland Canada DHC-6 Twin Otter",
	"Cessna 208B Grand Caravan", "Airbus A320",
}

var demoSummaries = []string{
	"Crashed while attempting to land in poor weather.",
	"The aircraft flew into a thunderstorm and broke up.",
	"Engine failure shortly after takeoff.",
	"Mechanical failure of the landing gear on approach.",
	"Pilot error during a night approach.",
	"The crew descended below the minimum safe altitude.",
	"An in-flight fire spread through the cabin.",
	"Disappeared over water; wreckage never found.",
	"",
}

// Generate builds size synthetic raw rows from seed. Rows carry the same
// kinds of gaps as the public dataset: missing aboard counts, ground counts,
// coordinates and summaries.
func Generate(seed uint64, size int) []domain.RawIncident {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := time.Date(1908, time.January, 1, 0, 0, 0, 0, time.UTC)
	span := int(time.Date(2009, time.December, 31, 0, 0, 0, 0, time.UTC).Sub(start).Hours() / 24)

	out := make([]domain.RawIncident, size)
	for i := range out {
		date := start.AddDate(0, 0, rng.IntN(span+1))
		place := demoPlaces[rng.IntN(len(demoPlaces))]
		aboard := 2 + rng.IntN(200)
		fatalities := rng.IntN(aboard + 1)

		raw := domain.RawIncident{
			Date:       domain.Loose(date.Format("01/02/2006")),
			Location:   domain.Loose(place.location),
			Country:    domain.Loose(place.country),
			Operator:   domain.Loose(demoOperators[rng.IntN(len(demoOperators))]),
			Type:       domain.Loose(demoTypes[rng.IntN(len(demoTypes))]),
			Fatalities: domain.Loose(strconv.Itoa(fatalities)),
			Summary:    domain.Loose(demoSummaries[rng.IntN(len(demoSummaries))]),
		}
		if rng.IntN(10) > 0 {
			raw.Aboard = domain.Loose(strconv.Itoa(aboard))
		}
		if rng.IntN(4) > 0 {
			raw.Ground = domain.Loose(strconv.Itoa(rng.IntN(3)))
		}
		if rng.IntN(3) > 0 {
			raw.Latitude = domain.Loose(fmt.Sprintf("%.2f", place.lat+rng.Float64()-0.5))
			raw.Longitude = domain.Loose(fmt.Sprintf("%.2f", place.lon+rng.Float64()-0.5))
		}
		out[i] = raw
	}
	return out
}
