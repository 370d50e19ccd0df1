package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geo"
)

// NominatimBaseURL is the public OpenStreetMap search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent identifies the service as the Nominatim usage policy requires.
const nominatimUserAgent = "Meridian-Geocoding-Service/1.0 (https://github.com/UnknownOlympus/meridian)"

// NominatimProvider geocodes addresses with the OpenStreetMap Nominatim API.
// The public instance allows about one request per second.
type NominatimProvider struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

// HTTPClient is the part of *http.Client used by HTTP based providers.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimPlace is one entry of the search response; coordinates arrive as strings.
type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewNominatimProvider creates a provider that talks to the public endpoint.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10 * time.Second

	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout}, log)
}

// NewNominatimProviderWithClient creates a provider with a custom HTTP client.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{client: client, baseURL: NominatimBaseURL, log: log}
}

// Geocode searches for address, relaxing it one comma-separated component at
// a time while the search comes back empty. Any other failure stops the search.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (geo.GeoPoint, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	candidates := addressFallbacks(address)
	for level, candidate := range candidates {
		point, err := np.search(ctx, candidate)
		if err == nil {
			if level > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address, "fallback", candidate, "fallback_level", level)
			}
			return point, nil
		}
		if !errors.Is(err, ErrEmptyResponse) {
			return geo.GeoPoint{}, err
		}
	}

	np.log.WarnContext(ctx, "All address fallbacks exhausted", "address", address, "variations_tried", len(candidates))

	return geo.GeoPoint{}, ErrEmptyResponse
}

// addressFallbacks lists address followed by progressively shorter prefixes:
// without the last component, without the last two, and the first one alone.
func addressFallbacks(address string) []string {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(candidate string) {
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	add(address)
	if len(parts) > 1 {
		add(strings.Join(parts[:len(parts)-1], ", "))
		if len(parts) > 2 {
			add(strings.Join(parts[:len(parts)-2], ", "))
		}
		add(parts[0])
	}

	return out
}

// search performs a single Nominatim query.
func (np *NominatimProvider) search(ctx context.Context, query string) (geo.GeoPoint, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return geo.GeoPoint{}, fmt.Errorf("%w: nominatim API returned status %d: %s",
			ErrUnexpectedResponse, resp.StatusCode, string(body))
	}

	var places []nominatimPlace
	if err = json.Unmarshal(body, &places); err != nil {
		return geo.GeoPoint{}, fmt.Errorf("%w: failed to decode nominatim response: %w", ErrUnexpectedResponse, err)
	}
	if len(places) == 0 {
		return geo.GeoPoint{}, ErrEmptyResponse
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("%w: invalid latitude %q", ErrInvalidCoordinates, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("%w: invalid longitude %q", ErrInvalidCoordinates, places[0].Lon)
	}

	return toPoint(lat, lon)
}
