package geocoding

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/geo"
)

// Provider resolves a free-text address into a validated point on the sphere.
type Provider interface {
	Geocode(ctx context.Context, address string) (geo.GeoPoint, error)
}

// Errors shared by the geocoding providers.
var (
	// ErrMissingAPIKey is returned when a provider that requires credentials has none.
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when the provider found no match for the address.
	ErrEmptyResponse = errors.New("geocoding provider returned empty response")
	// ErrUnexpectedResponse is returned for malformed payloads or API-reported errors.
	ErrUnexpectedResponse = errors.New("geocoding provider returned unexpected response")
	// ErrInvalidCoordinates is returned when the provider answers with unusable coordinates.
	ErrInvalidCoordinates = errors.New("geocoding provider returned invalid coordinates")
)

// toPoint validates coordinates received from a provider.
func toPoint(lat, lon float64) (geo.GeoPoint, error) {
	point, err := geo.FromDegrees(lat, lon)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("%w: %w", ErrInvalidCoordinates, err)
	}

	return point, nil
}
