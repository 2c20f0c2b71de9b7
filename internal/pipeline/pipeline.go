package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/observability"
	"github.com/couchcryptid/incident-analytics-service/internal/source"
)

// ErrNotLoaded is returned by every query while the initial load is pending.
var ErrNotLoaded = errors.New("dataset not loaded")

// State is the lifecycle stage of the working set.
type State string

// Pipeline states.
const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDegraded State = "degraded" // serving the fallback dataset after a load failure
	StateFailed   State = "failed"   // neither the source nor the fallback produced data
)

// Status describes the loaded working set.
type Status struct {
	State           State            `json:"state"`
	Source          string           `json:"source"`
	Records         int              `json:"records"`
	Fallback        bool             `json:"fallback"`
	Error           string           `json:"error,omitempty"`
	EstimatedAboard int              `json:"estimated_aboard"`
	EstimatedGround int              `json:"estimated_ground"`
	Geocoded        int              `json:"geocoded"`
	LoadedAt        time.Time        `json:"loaded_at,omitzero"`
	Filter          analytics.Filter `json:"filter"`
}

// Settings tune loading, view derivation and recomputation.
type Settings struct {
	Views       analytics.ViewOptions
	Debounce    time.Duration
	LoadTimeout time.Duration   // per loader attempt; zero means no limit
	Geocoder    domain.Geocoder // optional, bounded by its own per-call timeout
	Clock       clockwork.Clock // defaults to the real clock
}

// Pipeline owns the loaded incident set and derives views from it. Records are
// published once by Load and never mutated afterwards; every query filters
// and aggregates from scratch.
type Pipeline struct {
	loader   source.Loader
	fallback source.Loader
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool

	mu       sync.RWMutex
	records  []domain.Incident
	status   Status
	filter   analytics.Filter
	snapshot *Snapshot
	timer    clockwork.Timer
	sinks    []subscription
	nextSub  int

	// recomputeMu serializes snapshot builds so a slow build never
	// overwrites a newer one.
	recomputeMu sync.Mutex
}

// New creates a Pipeline. fallback is used when loader fails and may be nil.
func New(loader, fallback source.Loader, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clock := settings.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		loader:   loader,
		fallback: fallback,
		settings: settings,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		status:   Status{State: StateLoading, Source: loader.Name(), Filter: analytics.AllIncidents()},
		filter:   analytics.AllIncidents(),
	}
}

// CheckReadiness returns nil once a dataset (real or fallback) is loaded,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return ErrNotLoaded
	}
	return nil
}

// Load performs the single load attempt. A source failure, including one
// caused by LoadTimeout or a deadline on ctx, is reported once through
// Status, the log and metrics, and the fallback dataset is loaded in its
// place. Only cancellation of ctx skips the fallback. Load returns an error
// when no dataset could be loaded, and the state is then failed.
func (p *Pipeline) Load(ctx context.Context) error {
	name := p.loader.Name()
	raws, err := p.attempt(ctx, p.loader)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		p.fail(name, err)
		return ctx.Err()
	}
	// Work after an expired caller deadline keeps its values but not the deadline.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ctx = context.WithoutCancel(ctx)
	}

	var loadErr error
	if err != nil {
		loadErr = err
		p.logger.Error("dataset load failed", "source", name, "error", err)
		p.metrics.LoadFailures.Inc()

		if p.fallback == nil {
			p.fail(name, loadErr)
			return fmt.Errorf("load %s: %w", name, err)
		}
		name = p.fallback.Name()
		raws, err = p.attempt(ctx, p.fallback)
		if err != nil {
			p.fail(name, errors.Join(loadErr, err))
			return fmt.Errorf("load fallback %s: %w", name, err)
		}
		p.metrics.FallbackActive.Set(1)
		p.logger.Warn("serving fallback dataset", "source", name, "records", len(raws))
	}

	incs := domain.NormalizeAll(raws)
	geocoded := 0
	if p.settings.Geocoder != nil {
		geocoded = domain.EnrichAllWithGeocoding(ctx, incs, p.settings.Geocoder, p.logger)
	}

	status := Status{
		State:    StateReady,
		Source:   name,
		Records:  len(incs),
		Geocoded: geocoded,
		LoadedAt: p.clock.Now(),
	}
	for i := range incs {
		if incs[i].AboardEstimated {
			status.EstimatedAboard++
		}
		if incs[i].GroundEstimated {
			status.EstimatedGround++
		}
	}
	if loadErr != nil {
		status.State = StateDegraded
		status.Fallback = true
		status.Error = loadErr.Error()
	}

	p.mu.Lock()
	p.records = incs
	status.Filter = p.filter
	p.status = status
	p.mu.Unlock()

	p.ready.Store(true)
	p.metrics.RecordsLoaded.Set(float64(len(incs)))
	p.metrics.PipelineReady.Set(1)
	p.logger.Info("dataset loaded",
		"source", name,
		"records", len(incs),
		"estimated_aboard", status.EstimatedAboard,
		"geocoded", geocoded,
		"fallback", status.Fallback,
	)

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	p.recompute(pubCtx)
	return nil
}

// attempt runs one loader under LoadTimeout, when set.
func (p *Pipeline) attempt(ctx context.Context, loader source.Loader) ([]domain.RawIncident, error) {
	if p.settings.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.settings.LoadTimeout)
		defer cancel()
	}
	return loader.Load(ctx)
}

func (p *Pipeline) fail(name string, err error) {
	p.mu.Lock()
	p.status = Status{State: StateFailed, Source: name, Error: err.Error(), Filter: p.filter}
	p.mu.Unlock()
}

// Status returns the current load status.
func (p *Pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Filter returns the active dashboard filter.
func (p *Pipeline) Filter() analytics.Filter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// Filtered returns the records matching f.
func (p *Pipeline) Filtered(f analytics.Filter) ([]domain.Incident, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	recs, err := p.loaded()
	if err != nil {
		return nil, err
	}
	return f.Apply(recs), nil
}

// View builds one view over the records matching f. entity picks the score
// table grouping (operator or category); empty keeps the configured one.
func (p *Pipeline) View(kind analytics.ViewKind, f analytics.Filter, entity string) (analytics.View, error) {
	view, err := p.view(kind, f, entity)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.ViewRequests.WithLabelValues(string(kind), outcome).Inc()
	return view, err
}

func (p *Pipeline) view(kind analytics.ViewKind, f analytics.Filter, entity string) (analytics.View, error) {
	opts := p.settings.Views
	if entity != "" {
		e, err := analytics.ParseEntity(entity)
		if err != nil {
			return analytics.View{}, err
		}
		opts.Entity = e
	}
	recs, err := p.Filtered(f)
	if err != nil {
		return analytics.View{}, err
	}
	return analytics.BuildView(kind, recs, opts)
}

// Risk assesses a hypothetical flight against the records matching f.
func (p *Pipeline) Risk(q analytics.RiskQuery, f analytics.Filter) (analytics.RiskAssessment, error) {
	recs, err := p.Filtered(f)
	if err != nil {
		return analytics.RiskAssessment{}, err
	}
	return analytics.AssessFlightRisk(recs, q), nil
}

func (p *Pipeline) loaded() ([]domain.Incident, error) {
	if !p.ready.Load() {
		return nil, ErrNotLoaded
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.records, nil
}
