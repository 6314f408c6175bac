// Package main contains the entrypoint for the pressbot application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/akorotkov/pressbot/internal/bot"
	"github.com/akorotkov/pressbot/internal/bot/handlers"
	"github.com/akorotkov/pressbot/internal/bot/tasks"
	"github.com/akorotkov/pressbot/internal/config"
	"github.com/akorotkov/pressbot/internal/database"
	"github.com/akorotkov/pressbot/internal/gemini"
	"github.com/akorotkov/pressbot/internal/logger"
	"github.com/akorotkov/pressbot/internal/session"
	"github.com/akorotkov/pressbot/internal/storage"
	"github.com/akorotkov/pressbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, storage,
// archive db, ai client, bot, scheduler), handles graceful shutdown, and returns
// an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	store, err := storage.NewStore(cfg.Storage.Path, log)
	if err != nil {
		log.Error("Failed to open post storage", "path", cfg.Storage.Path, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to archive database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db) // Ensure DB is closed on function exit
	archive := database.NewArchive(db, log)
	if err := archive.Ping(ctx); err != nil {
		log.Error("Archive database is not reachable", "path", cfg.Database.Path, "error", err)
		return 1
	}

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}
	// Note: Gemini client does not have an explicit Close method in the SDK used.

	sessions := session.NewTracker()

	// The default handler needs the messenger, which wraps the bot instance
	// that is only available after creation. The indirection below lets the
	// handler be assigned before the bot starts consuming updates.
	var newsHandler tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if newsHandler != nil {
				newsHandler(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.NewBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Sessions:  sessions,
		Gemini:    gemClient,
		Archive:   archive,
		Messenger: telegram.NewMessenger(tg, cfg.Telegram.Token, log),
	}
	newsHandler = handlers.NewNewsHandler(hDeps)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAll(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Archive: archive,
		Config:  cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAll(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, cfg, db, store, sessions, archive, gemClient, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
