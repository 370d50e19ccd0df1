package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for AreaMatches.
const (
	AreaInside  = "inside"
	AreaOutside = "outside"
)

type Metrics struct {
	TaskProcessed  *prometheus.CounterVec
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveWorkers  prometheus.Gauge
	AreaMatches    *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TaskProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_tasks_processed_total",
			Help: "Total number of processed geocoding tasks.",
		}, []string{"status"}),
		APIErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "meridian_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider.",
		}),
		RequestSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "meridian_active_workers",
			Help: "Current number of workers processing tasks.",
		}),
		AreaMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_area_classifications_total",
			Help: "Geocoded tasks by service area classification.",
		}, []string{"result"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_geocode_cache_lookups_total",
			Help: "Geocode cache lookups by result.",
		}, []string{"result"}),
	}
}
