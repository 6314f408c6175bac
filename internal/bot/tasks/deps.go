// Package tasks implements the scheduled background jobs of pressbot.
package tasks

import (
	"log/slog"

	"github.com/akorotkov/pressbot/internal/config"
	"github.com/akorotkov/pressbot/internal/database"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Archive database.Archive
	Config  *config.Config
}
