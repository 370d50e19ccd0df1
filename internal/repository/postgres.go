package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// maxGeocodingAttempts is the number of failed attempts after which a task is skipped.
const maxGeocodingAttempts = 5

// FetchTasksForGeocoding retrieves open tasks that have an address but no
// coordinates yet and have failed fewer than maxGeocodingAttempts times,
// oldest first, at most limit of them.
func (r *Repository) FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error) {
	var tasks []models.Task
	query := `
		SELECT task_id, address
		FROM public.tasks
		WHERE
			latitude IS NULL
			AND is_closed = false
			AND geocoding_attempts < $1
			AND address IS NOT NULL AND address <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, maxGeocodingAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tasks with address: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan active task with address: %w", errScan)
		}
		r.log.DebugContext(ctx, "Fetched task without coordinates", "ID", task.ID, "Address", task.Address)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateTaskPlacement stores the geocoded point of a task together with its
// distance from the service area origin and whether it is served, and clears
// the last geocoding error.
func (r *Repository) UpdateTaskPlacement(ctx context.Context, taskID int, placement models.Placement) error {
	query := `
		UPDATE public.tasks
		SET
			latitude = $1,
			longitude = $2,
			distance = $3,
			in_service_area = $4,
			geocoding_error = NULL
		WHERE
			task_id = $5;
	`

	_, err := r.db.Exec(ctx, query,
		placement.Point.Latitude(),
		placement.Point.Longitude(),
		placement.Distance,
		placement.InServiceArea,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task placement: %w", err)
	}

	return nil
}

// IncrementFailureCount records a failed geocoding attempt and its error message.
func (r *Repository) IncrementFailureCount(ctx context.Context, taskID int, errMsg string) error {
	query := `
		UPDATE public.tasks
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE task_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, taskID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
