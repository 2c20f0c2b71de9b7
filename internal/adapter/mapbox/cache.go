package mapbox

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/incident-analytics-service/internal/domain"
	"github.com/couchcryptid/incident-analytics-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// place and region. Incident datasets repeat locations heavily, so most
// lookups after the first load are hits.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[cacheKey, domain.GeocodingResult]
	metrics *observability.Metrics
}

type cacheKey struct {
	place, region string
}

// NewCachedGeocoder creates a cache decorator around a geocoder. A
// non-positive size falls back to a single entry.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	cache, _ := lru.New[cacheKey, domain.GeocodingResult](max(maxEntries, 1))
	return &CachedGeocoder{inner: inner, cache: cache, metrics: metrics}
}

// ForwardGeocode implements domain.Geocoder.
func (c *CachedGeocoder) ForwardGeocode(ctx context.Context, place, region string) (domain.GeocodingResult, error) {
	key := cacheKey{place: place, region: region}
	if result, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	result, err := c.inner.ForwardGeocode(ctx, place, region)
	if err != nil {
		return result, err
	}
	// Empty results stay uncached so a later load can retry them.
	if result.FormattedAddress != "" {
		c.cache.Add(key, result)
	}
	return result, nil
}

// Len reports the number of cached places.
func (c *CachedGeocoder) Len() int { return c.cache.Len() }
