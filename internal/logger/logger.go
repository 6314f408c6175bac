// Package logger configures structured logging for pressbot using log/slog.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// New creates a slog Logger with the given level, emitting JSON when
// jsonOutput is true and plain text otherwise.
func New(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// Middleware returns a bot middleware that logs every incoming update,
// covering both plain messages and inline button presses.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			entry := log.With("update_id", update.ID)

			switch {
			case update.Message != nil:
				msg := update.Message
				entry = entry.With(
					"update_type", "message",
					"message_id", msg.ID,
					"chat_id", msg.Chat.ID,
					"has_photo", len(msg.Photo) > 0,
					"has_video", msg.Video != nil,
					"text_preview", preview(msg.Text+msg.Caption, 50),
				)
			case update.CallbackQuery != nil:
				cq := update.CallbackQuery
				entry = entry.With(
					"update_type", "callback_query",
					"user_id", cq.From.ID,
					"data", cq.Data,
				)
				if cq.Message.Message != nil {
					entry = entry.With("chat_id", cq.Message.Message.Chat.ID)
				} else if cq.Message.InaccessibleMessage != nil {
					entry = entry.With("chat_id", cq.Message.InaccessibleMessage.Chat.ID)
				}
			default:
				entry = entry.With("update_type", "other")
			}

			entry.InfoContext(ctx, "Processing update")
			next(ctx, b, update)
			entry.InfoContext(ctx, "Finished processing update", "duration", time.Since(start))
		}
	}
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
