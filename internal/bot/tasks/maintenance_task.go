package tasks

import (
	"context"
	"fmt"
	"time"
)

// newArchiveMaintenanceTask creates the scheduled task function that compacts
// and re-analyzes the published post archive.
func newArchiveMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "archive_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled archive maintenance task...")
		startTime := time.Now()

		err := deps.Archive.RunMaintenance(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Archive maintenance task failed", "error", err, "duration", duration)

			return fmt.Errorf("archive maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled archive maintenance task completed successfully", "duration", duration)
		return nil
	}
}
