// Package bot implements the core bot lifecycle and component orchestration
// for pressbot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/akorotkov/pressbot/internal/config"
	"github.com/akorotkov/pressbot/internal/database"
	"github.com/akorotkov/pressbot/internal/gemini"
	"github.com/akorotkov/pressbot/internal/session"
	"github.com/akorotkov/pressbot/internal/storage"
)

// Bot is the main application object; it owns the components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	db        *sqlx.DB
	store     *storage.Store
	sessions  *session.Tracker
	archive   database.Archive
	gemini    gemini.Client
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// New creates the bot with all required dependencies wired in.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	db *sqlx.DB,
	store *storage.Store,
	sessions *session.Tracker,
	archive database.Archive,
	geminiClient gemini.Client,
	tg *tgbot.Bot,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		db:        db,
		store:     store,
		sessions:  sessions,
		archive:   archive,
		gemini:    geminiClient,
		tgBot:     tg,
		scheduler: scheduler,
	}
}

// Run starts the Telegram update listener and the scheduler, blocking until
// the context is cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram update listener")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram update listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
