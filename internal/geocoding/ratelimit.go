package geocoding

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"golang.org/x/time/rate"
)

// RateLimitedProvider delays calls to the wrapped provider so they respect a rate limit.
type RateLimitedProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps next with limiter.
func NewRateLimitedProvider(next Provider, limiter *rate.Limiter) *RateLimitedProvider {
	return &RateLimitedProvider{next: next, limiter: limiter}
}

// Geocode waits for a token and delegates to the wrapped provider.
func (rp *RateLimitedProvider) Geocode(ctx context.Context, address string) (geo.GeoPoint, error) {
	if err := rp.limiter.Wait(ctx); err != nil {
		return geo.GeoPoint{}, fmt.Errorf("rate limit exceeded: %w", err)
	}

	return rp.next.Geocode(ctx, address)
}
