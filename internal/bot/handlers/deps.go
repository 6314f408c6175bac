package handlers

import (
	"log/slog"

	"github.com/akorotkov/pressbot/internal/config"
	"github.com/akorotkov/pressbot/internal/database"
	"github.com/akorotkov/pressbot/internal/gemini"
	"github.com/akorotkov/pressbot/internal/session"
	"github.com/akorotkov/pressbot/internal/storage"
	"github.com/akorotkov/pressbot/internal/telegram"
)

// HandlerDeps provides dependencies for the Telegram handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     *storage.Store
	Sessions  *session.Tracker
	Gemini    gemini.Client
	Archive   database.Archive
	Messenger telegram.Messenger
}
