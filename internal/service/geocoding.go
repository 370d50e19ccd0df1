package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
)

// batchSize caps the number of tasks fetched per poll.
const batchSize = 100

// Placer classifies a geocoded point against the service area.
type Placer interface {
	Place(point geo.GeoPoint) (models.Placement, error)
}

// GeocodingService periodically geocodes pending tasks, classifies them
// against the service area and stores the result.
type GeocodingService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Task storage
	provider     geocoding.Provider   // Geocoding backend
	providerName string               // Name of the provider for metrics labeling
	area         Placer               // Service area the points are measured against
	metrics      *metrics.Metrics
	numWorkers   int
	pollInterval time.Duration
	addrPrefix   string // Prepended to every address (country, city, etc.)
}

// NewGeocodingService creates a new instance of GeocodingService.
func NewGeocodingService(
	log *slog.Logger,
	repo repository.Interface,
	provider geocoding.Provider,
	providerName string,
	area Placer,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addrPrefix string,
) *GeocodingService {
	return &GeocodingService{
		log:          log,
		repo:         repo,
		provider:     provider,
		providerName: providerName,
		area:         area,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		addrPrefix:   addrPrefix,
	}
}

// Run polls for tasks every pollInterval until ctx is cancelled.
func (gs *GeocodingService) Run(ctx context.Context) {
	ticker := time.NewTicker(gs.pollInterval)
	defer ticker.Stop()

	gs.log.InfoContext(ctx, "Geocoding service started...")

	for {
		select {
		case <-ctx.Done():
			gs.log.InfoContext(ctx, "Geocoding service stopped.")
			return
		case <-ticker.C:
			gs.log.InfoContext(ctx, "Polling for new tasks to geocode...")
			gs.processBatch(ctx)
		}
	}
}

// processBatch fetches one batch of tasks and fans it out to the worker pool,
// returning once every task has been handled.
func (gs *GeocodingService) processBatch(ctx context.Context) {
	tasks, err := gs.repo.FetchTasksForGeocoding(ctx, batchSize)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to fetch tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		gs.log.InfoContext(ctx, "No tasks to process.")
		return
	}

	gs.log.InfoContext(ctx, "Found tasks to process. Starting worker pool.",
		"jobs", len(tasks),
		"num_workers", gs.numWorkers,
	)

	jobs := make(chan models.Task, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= gs.numWorkers; i++ {
		wgr.Add(1)
		go gs.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	gs.log.InfoContext(ctx, "Processing batch finished")
}

func (gs *GeocodingService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Task) {
	defer wg.Done()
	for task := range jobs {
		gs.metrics.ActiveWorkers.Inc()
		gs.handle(ctx, idx, task)
		gs.metrics.ActiveWorkers.Dec()
	}
}

// handle geocodes a single task. A failed lookup or classification counts as
// an attempt against the task; a failed store is only logged so the task is
// retried on the next poll.
func (gs *GeocodingService) handle(ctx context.Context, idx int, task models.Task) {
	gs.log.DebugContext(ctx, "Processing task", "worker", idx, "task", task.ID)

	startTime := time.Now()
	point, err := gs.provider.Geocode(ctx, gs.addrPrefix+task.Address)
	gs.metrics.RequestSeconds.WithLabelValues(gs.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to geocode", "worker", idx, "task", task.ID, "error", err)
		gs.metrics.APIErrors.Inc()
		gs.fail(ctx, idx, task, err)
		return
	}

	placement, err := gs.area.Place(point)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to place point in service area",
			"worker", idx, "task", task.ID, "point", point.String(), "error", err)
		gs.fail(ctx, idx, task, err)
		return
	}

	gs.metrics.TaskProcessed.WithLabelValues("success").Inc()
	if placement.InServiceArea {
		gs.metrics.AreaMatches.WithLabelValues(metrics.AreaInside).Inc()
	} else {
		gs.metrics.AreaMatches.WithLabelValues(metrics.AreaOutside).Inc()
	}

	if err = gs.repo.UpdateTaskPlacement(ctx, task.ID, placement); err != nil {
		gs.log.ErrorContext(ctx, "Failed to update placement for task",
			"worker", idx,
			"task", task.ID,
			"error", err,
		)
		return
	}

	gs.log.DebugContext(ctx, "Worker successfully processed the task",
		"worker", idx,
		"task", task.ID,
		"distance", placement.Distance,
		"in_service_area", placement.InServiceArea,
	)
}

func (gs *GeocodingService) fail(ctx context.Context, idx int, task models.Task, cause error) {
	gs.metrics.TaskProcessed.WithLabelValues("failure").Inc()

	if err := gs.repo.IncrementFailureCount(ctx, task.ID, cause.Error()); err != nil {
		gs.log.ErrorContext(ctx, "Could not update failure count for task",
			"worker", idx,
			"task", task.ID,
			"error", err,
		)
	}
}
