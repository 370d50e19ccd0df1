package geocoding

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// nominatimRateLimit is the fair-use limit of the public Nominatim instance.
const nominatimRateLimit = 1

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key, required by Google
	RateLimit int          // Requests per second, 0 keeps the provider default
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates the geocoding provider selected by config.Type.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (no API key, rate limited)
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return newNominatimProvider(config), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for Google provider", ErrMissingAPIKey)
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

func newNominatimProvider(config ProviderConfig) Provider {
	limit := config.RateLimit
	if limit <= 0 {
		limit = nominatimRateLimit
		config.Logger.Debug("Rate limit for Nominatim not set, using fair-use default", "value", limit)
	}

	return NewRateLimitedProvider(
		NewNominatimProvider(config.Logger),
		rate.NewLimiter(rate.Limit(limit), limit),
	)
}
