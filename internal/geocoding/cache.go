package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "geocode:"

// Cache lookup results used as metric labels.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// CacheStore is the part of *redis.Client used by CachedProvider.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedProvider remembers resolved addresses in Redis. Cache failures are
// logged and never fail a lookup.
type CachedProvider struct {
	next    Provider
	store   CacheStore
	ttl     time.Duration
	log     *slog.Logger
	lookups *prometheus.CounterVec
}

// NewCachedProvider wraps next with a Redis cache. lookups is labelled by
// result (hit, miss, error).
func NewCachedProvider(
	next Provider,
	store CacheStore,
	ttl time.Duration,
	log *slog.Logger,
	lookups *prometheus.CounterVec,
) *CachedProvider {
	return &CachedProvider{next: next, store: store, ttl: ttl, log: log, lookups: lookups}
}

// Geocode serves address from the cache when possible and stores fresh results.
func (cp *CachedProvider) Geocode(ctx context.Context, address string) (geo.GeoPoint, error) {
	key := cacheKey(address)

	point, err := cp.lookup(ctx, key)
	switch {
	case err == nil:
		cp.lookups.WithLabelValues(CacheHit).Inc()
		cp.log.DebugContext(ctx, "Geocode cache hit", "address", address, "point", point.String())
		return point, nil
	case errors.Is(err, redis.Nil):
		cp.lookups.WithLabelValues(CacheMiss).Inc()
	default:
		cp.lookups.WithLabelValues(CacheError).Inc()
		cp.log.WarnContext(ctx, "Geocode cache lookup failed", "address", address, "error", err)
	}

	point, err = cp.next.Geocode(ctx, address)
	if err != nil {
		return geo.GeoPoint{}, err
	}

	if err = cp.store.Set(ctx, key, point.String(), cp.ttl).Err(); err != nil {
		cp.log.WarnContext(ctx, "Failed to store geocode in cache", "address", address, "error", err)
	}

	return point, nil
}

func (cp *CachedProvider) lookup(ctx context.Context, key string) (geo.GeoPoint, error) {
	raw, err := cp.store.Get(ctx, key).Result()
	if err != nil {
		return geo.GeoPoint{}, err
	}

	return parseCachedPoint(raw)
}

// cacheKey normalizes case and whitespace so equivalent addresses share an entry.
func cacheKey(address string) string {
	return cacheKeyPrefix + strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

func parseCachedPoint(raw string) (geo.GeoPoint, error) {
	latRaw, lonRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return geo.GeoPoint{}, fmt.Errorf("malformed cache entry %q", raw)
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("malformed cache latitude %q: %w", latRaw, err)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return geo.GeoPoint{}, fmt.Errorf("malformed cache longitude %q: %w", lonRaw, err)
	}

	return geo.FromDegrees(lat, lon)
}
