package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes addresses with the Google Maps Geocoding API.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the part of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider wraps an already configured Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode returns the location of the first result Google reports for address.
// API-reported failures (REQUEST_DENIED, OVER_QUERY_LIMIT, ...) come back from
// the client as errors and are wrapped; an empty result list is ErrEmptyResponse.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (geo.GeoPoint, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(results) == 0 {
		return geo.GeoPoint{}, ErrEmptyResponse
	}
	location := results[0].Geometry.Location

	return toPoint(location.Lat, location.Lng)
}
