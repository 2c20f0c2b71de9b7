package analytics

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
)

// ErrUnknownView is returned for a view kind outside the closed set.
var ErrUnknownView = errors.New("unknown view")

// ErrUnknownEntity is returned for a score entity other than operator or category.
var ErrUnknownEntity = errors.New("unknown entity")

// ViewKind names one derived view.
type ViewKind string

// View kinds.
const (
	ViewOverview   ViewKind = "overview"
	ViewYearly     ViewKind = "yearly"
	ViewDecades    ViewKind = "decades"
	ViewMonths     ViewKind = "months"
	ViewSeasons    ViewKind = "seasons"
	ViewDays       ViewKind = "days"
	ViewOperators  ViewKind = "operators"
	ViewCategories ViewKind = "categories"
	ViewCauses     ViewKind = "causes"
	ViewSafety     ViewKind = "safety"
	ViewRisk       ViewKind = "risk"
	ViewCosts      ViewKind = "costs"
	ViewSurvival   ViewKind = "survival"
	ViewAnomalies  ViewKind = "anomalies"
	ViewForecast   ViewKind = "forecast"
	ViewInsights   ViewKind = "insights"
	ViewGeo        ViewKind = "geo"
)

// ViewKinds lists every kind in display order.
var ViewKinds = []ViewKind{
	ViewOverview, ViewYearly, ViewDecades, ViewMonths, ViewSeasons, ViewDays,
	ViewOperators, ViewCategories, ViewCauses, ViewSafety, ViewRisk, ViewCosts,
	ViewSurvival, ViewAnomalies, ViewForecast, ViewInsights, ViewGeo,
}

// ParseViewKind validates a view name.
func ParseViewKind(s string) (ViewKind, error) {
	for _, k := range ViewKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Entity types for score tables.
const (
	EntityOperator = "operator"
	EntityCategory = "category"
)

// ParseEntity validates a score entity. Empty selects EntityOperator.
func ParseEntity(s string) (string, error) {
	switch s {
	case "":
		return EntityOperator, nil
	case EntityOperator, EntityCategory:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, s)
	}
}

// ViewOptions tune the parameterized views.
type ViewOptions struct {
	TopN             int
	Entity           string
	AnomalyThreshold float64
	ForecastHorizon  int
	ForecastMethod   ForecastMethod
	RiskMinScore     float64
}

// DefaultViewOptions returns the options used when nothing is configured.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		TopN:             15,
		Entity:           EntityOperator,
		AnomalyThreshold: DefaultAnomalyThreshold,
		ForecastHorizon:  5,
		ForecastMethod:   ForecastEndpoint,
	}
}

func (o ViewOptions) entityKey() func(domain.Incident) string {
	if o.Entity == EntityCategory {
		return ByCategory
	}
	return ByOperator
}

// Overview is the headline summary of a record set.
type Overview struct {
	Totals
	Survivors       int     `json:"survivors"`
	SurvivalRate    float64 `json:"survival_rate"`
	FatalityRate    float64 `json:"fatality_rate"`
	FirstYear       int     `json:"first_year"`
	LastYear        int     `json:"last_year"`
	Operators       int     `json:"operators"`
	Categories      int     `json:"categories"`
	WithCoordinates int     `json:"with_coordinates"`
	FatalityStats   Summary `json:"fatality_stats"`
}

// GeoPoint is an incident placed on a map.
type GeoPoint struct {
	ID         int     `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Location   string  `json:"location"`
	Year       int     `json:"year"`
	Fatalities int     `json:"fatalities"`
	Survival   float64 `json:"survival_rate"`
	Source     string  `json:"source"`
}

// View is the view model handed to rendering collaborators. Only the fields
// relevant to Kind are set.
type View struct {
	Kind      ViewKind     `json:"kind"`
	Records   int          `json:"records"`
	Overview  *Overview    `json:"overview,omitempty"`
	Buckets   []Bucket     `json:"buckets,omitempty"`
	Scores    []ScoreEntry `json:"scores,omitempty"`
	Series    []Point      `json:"series,omitempty"`
	Anomalies []Anomaly    `json:"anomalies,omitempty"`
	Forecast  []Prediction `json:"forecast,omitempty"`
	Insights  []Insight    `json:"insights,omitempty"`
	Points    []GeoPoint   `json:"points,omitempty"`
}

// BuildView derives the view of kind from an already filtered record set.
func BuildView(kind ViewKind, incs []domain.Incident, opts ViewOptions) (View, error) {
	v := View{Kind: kind, Records: len(incs)}
	switch kind {
	case ViewOverview:
		o := BuildOverview(incs)
		v.Overview = &o
	case ViewYearly:
		v.Buckets = YearBreakdown(incs)
		v.Series = YearlySeries(incs)
	case ViewDecades:
		v.Buckets = DecadeBreakdown(incs)
	case ViewMonths:
		v.Buckets = MonthBreakdown(incs)
	case ViewSeasons:
		v.Buckets = SeasonBreakdown(incs)
	case ViewDays:
		v.Buckets = DayBreakdown(incs)
	case ViewOperators:
		v.Buckets = RankedBreakdown(incs, ByOperator, opts.TopN)
	case ViewCategories:
		v.Buckets = RankedBreakdown(incs, ByCategory, opts.TopN)
	case ViewCauses:
		v.Buckets = CauseBreakdown(incs)
	case ViewSafety:
		v.Scores = TopSafest(incs, opts.entityKey(), opts.TopN)
	case ViewRisk:
		v.Scores = RiskRanking(incs, opts.entityKey(), opts.RiskMinScore, opts.TopN)
	case ViewCosts:
		v.Scores = CostRanking(incs, opts.TopN)
	case ViewSurvival:
		v.Series = SurvivalSeries(incs)
		v.Buckets = DayBreakdown(incs)
	case ViewAnomalies:
		v.Series = YearlySeries(incs)
		v.Anomalies = YearAnomalies(incs, opts.AnomalyThreshold)
	case ViewForecast:
		v.Series = YearlySeries(incs)
		v.Forecast = Forecast(v.Series, opts.ForecastHorizon, opts.ForecastMethod)
	case ViewInsights:
		v.Insights = GenerateInsights(incs)
	case ViewGeo:
		v.Points = GeoPoints(incs)
	default:
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}
	return v, nil
}

// BuildOverview summarizes incs.
func BuildOverview(incs []domain.Incident) Overview {
	t := Total(incs)
	o := Overview{
		Totals:        t,
		Survivors:     t.Survivors(),
		SurvivalRate:  t.SurvivalRate(),
		FatalityRate:  t.FatalityRate(),
		Operators:     CountBy(Pluck(incs, ByOperator)).Len(),
		Categories:    CountBy(Pluck(incs, ByCategory)).Len(),
		FatalityStats: Describe(Floats(Pluck(incs, func(i domain.Incident) int { return i.Fatalities }))),
	}
	if years := YearlySeries(incs); len(years) > 0 {
		o.FirstYear, o.LastYear = years[0].Period, years[len(years)-1].Period
	}
	for _, inc := range incs {
		if inc.HasCoords {
			o.WithCoordinates++
		}
	}
	return o
}

// SurvivalSeries is the survival rate per known year, in percent.
func SurvivalSeries(incs []domain.Incident) []Point {
	return yearly(incs, func(g []domain.Incident) float64 { return Total(g).SurvivalRate() })
}

// GeoPoints lists incidents with coordinates. Others are left out.
func GeoPoints(incs []domain.Incident) []GeoPoint {
	out := []GeoPoint{}
	for _, inc := range incs {
		if !inc.HasCoords {
			continue
		}
		out = append(out, GeoPoint{
			ID:         inc.ID,
			Lat:        inc.Geo.Lat,
			Lon:        inc.Geo.Lon,
			Location:   inc.Location,
			Year:       inc.Year,
			Fatalities: inc.Fatalities,
			Survival:   Percent(float64(inc.Survivors()), float64(inc.Aboard)),
			Source:     inc.GeoSource,
		})
	}
	return out
}
