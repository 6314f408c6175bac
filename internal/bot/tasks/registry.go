package tasks

import "context"

// ScheduledTaskFunc is the signature every scheduled task implements. The
// scheduler's context must be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAll returns the map of registered scheduled tasks, keyed by a
// task identifier used for logging.
func RegisterAll(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasksMap := make(map[string]ScheduledTaskFunc)

	tasksMap["archive_maintenance"] = newArchiveMaintenanceTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasksMap))
	return tasksMap
}
