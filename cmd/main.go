package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/meridian/internal/area"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// defaultGoogleRateLimit is the client-side request budget for Google when none is configured.
const defaultGoogleRateLimit = 50

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := repository.NewDatabase(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.Migrate(ctx); err != nil {
		log.Fatalf("Failed to prepare DB schema: %v", err)
	}

	geoProvider, err := buildProvider(ctx, cfg, logger, appMetrics)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type, "cache", cfg.Redis.Enabled)

	serviceArea, err := buildServiceArea(cfg.Area)
	if err != nil {
		log.Fatalf("Failed to build service area: %v", err)
	}
	bounds := serviceArea.Bounds()
	logger.InfoContext(ctx, "Service area initialized",
		"origin", serviceArea.Origin().String(),
		"radius", cfg.Area.Radius,
		"unit", cfg.Area.Unit,
		"boundary_vertices", len(cfg.Area.Polygon),
		"wraps_antimeridian", bounds.Wraps(),
	)

	geoService := service.NewGeocodingService(
		logger,
		repo,
		geoProvider,
		cfg.Provider.Type,
		serviceArea,
		appMetrics,
		cfg.Geocoder.Workers,
		cfg.Geocoder.Interval,
		cfg.Geocoder.AddrPrefix,
	)

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	go startMonitoringServer(ctx, logger, reg, dtb, cfg.Port)

	go geoService.Run(ctx)

	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// buildProvider creates the configured geocoding provider and, when Redis is
// enabled, puts the geocode cache in front of it.
func buildProvider(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
) (geocoding.Provider, error) {
	rateLimit := cfg.Provider.RateLimit
	if rateLimit == 0 && cfg.Provider.Type == string(geocoding.ProviderTypeGoogle) {
		rateLimit = defaultGoogleRateLimit
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		RateLimit: rateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	if !cfg.Redis.Enabled {
		return provider, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = client.Ping(ctx).Err(); err != nil {
		// The cache is optional: lookups fall through to the provider while Redis is down.
		logger.WarnContext(ctx, "Redis is unreachable, geocode cache will be bypassed", "error", err)
	}

	return geocoding.NewCachedProvider(provider, client, cfg.Redis.TTL, logger, appMetrics.CacheLookups), nil
}

// buildServiceArea turns the area section of the configuration into a ServiceArea.
func buildServiceArea(cfg config.AreaConfig) (*area.ServiceArea, error) {
	origin, err := geo.FromDegrees(cfg.OriginLat, cfg.OriginLon)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}

	unit, err := geo.ParseUnit(cfg.Unit)
	if err != nil {
		return nil, err
	}

	var boundary *geo.Polygon
	if pairs := cfg.PolygonPairs(); pairs != nil {
		if boundary, err = geo.PolygonFromPairs(pairs); err != nil {
			return nil, fmt.Errorf("invalid boundary: %w", err)
		}
	}

	return area.New(origin, cfg.Radius, unit, boundary)
}

// startMonitoringServer serves /healthz (database ping) and /metrics on port
// until ctx is cancelled.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		status, body := http.StatusOK, "OK"
		if err := dtb.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	readTimeout := 5 * time.Second
	writeTimeout := 10 * time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Monitoring server shutdown failed", "error", err)
		}
	}()

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
