package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills in coordinates for an incident that has a known
// location but no valid pair of its own. Source coordinates are never
// overwritten. A nil geocoder or a failed lookup leaves the incident usable;
// failures are recorded in GeoSource.
func EnrichWithGeocoding(ctx context.Context, inc Incident, geocoder Geocoder, logger *slog.Logger) Incident {
	if geocoder == nil || inc.HasCoords || inc.Location == Unknown {
		return inc
	}

	region := inc.Country
	if region == Unknown {
		region = ""
	}

	result, err := geocoder.ForwardGeocode(ctx, inc.Location, region)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"incident_id", inc.ID,
			"location", inc.Location,
			"region", region,
			"error", err,
		)
		inc.GeoSource = GeoSourceFailed
		return inc
	}

	geo := Geo{Lat: result.Lat, Lon: result.Lon}
	if !validGeo(geo) {
		return inc
	}
	inc.Geo = geo
	inc.HasCoords = true
	inc.GeoSource = GeoSourceForward
	inc.FormattedAddress = result.FormattedAddress
	inc.GeoConfidence = result.Confidence
	return inc
}

// EnrichAllWithGeocoding runs EnrichWithGeocoding over a slice in place and
// returns how many incidents gained coordinates. It stops early if ctx is done.
func EnrichAllWithGeocoding(ctx context.Context, incs []Incident, geocoder Geocoder, logger *slog.Logger) int {
	if geocoder == nil {
		return 0
	}
	resolved := 0
	for i := range incs {
		if ctx.Err() != nil {
			break
		}
		before := incs[i].HasCoords
		incs[i] = EnrichWithGeocoding(ctx, incs[i], geocoder, logger)
		if !before && incs[i].HasCoords {
			resolved++
		}
	}
	return resolved
}
