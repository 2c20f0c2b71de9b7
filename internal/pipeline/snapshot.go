package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/incident-analytics-service/internal/analytics"
)

// publishTimeout bounds sink delivery for recomputations triggered by a
// filter change, which have no caller context.
const publishTimeout = 15 * time.Second

// Snapshot is the full dashboard derived from the active filter. Sinks share
// one snapshot value and must treat it as read-only.
type Snapshot struct {
	ID          string                                `json:"id"`
	GeneratedAt time.Time                             `json:"generated_at"`
	Filter      analytics.Filter                      `json:"filter"`
	Records     int                                   `json:"records"`
	Views       map[analytics.ViewKind]analytics.View `json:"views"`
}

// Sink receives every recomputed dashboard snapshot.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot) error
}

type subscription struct {
	id   int
	sink Sink
}

// Subscribe registers sink for future snapshots and returns a function that
// removes it.
func (p *Pipeline) Subscribe(sink Sink) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSub++
	id := p.nextSub
	p.sinks = append(p.sinks, subscription{id: id, sink: sink})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.sinks = slices.DeleteFunc(p.sinks, func(s subscription) bool { return s.id == id })
	}
}

// SetFilter replaces the dashboard filter. The recomputation is debounced:
// calls arriving within the debounce delay of each other coalesce into one.
func (p *Pipeline) SetFilter(f analytics.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f
	p.status.Filter = f
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = p.clock.AfterFunc(p.settings.Debounce, func() {
		if !p.ready.Load() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		p.recompute(ctx)
	})
	return nil
}

// Dashboard returns the latest snapshot.
func (p *Pipeline) Dashboard() (Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return *p.snapshot, nil
}

// Close stops any pending recomputation.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
}

// recompute rebuilds the dashboard for the current filter and delivers it to
// every subscriber.
func (p *Pipeline) recompute(ctx context.Context) {
	p.recomputeMu.Lock()
	defer p.recomputeMu.Unlock()

	start := time.Now()
	p.mu.RLock()
	recs, f := p.records, p.filter
	p.mu.RUnlock()

	filtered := f.Apply(recs)
	snap := Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: p.clock.Now(),
		Filter:      f,
		Records:     len(filtered),
		Views:       make(map[analytics.ViewKind]analytics.View, len(analytics.ViewKinds)),
	}
	for _, kind := range analytics.ViewKinds {
		view, err := analytics.BuildView(kind, filtered, p.settings.Views)
		if err != nil {
			p.logger.Error("build view failed", "kind", kind, "error", err)
			continue
		}
		snap.Views[kind] = view
	}

	p.mu.Lock()
	p.snapshot = &snap
	subs := slices.Clone(p.sinks)
	p.mu.Unlock()

	p.metrics.Recomputations.Inc()
	p.metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	p.metrics.FilteredRecords.Set(float64(len(filtered)))
	p.logger.Debug("dashboard recomputed", "snapshot_id", snap.ID, "records", len(filtered))

	for _, sub := range subs {
		if err := sub.sink.Publish(ctx, snap); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Warn("snapshot publish failed", "snapshot_id", snap.ID, "error", err)
			continue
		}
		p.metrics.SnapshotsPublished.Inc()
	}
}
