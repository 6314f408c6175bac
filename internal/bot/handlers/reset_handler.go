package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewResetHandler returns a handler for the /reset command. It discards the
// pending-post snapshot and every chat's session mode, for all chats.
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps}.Handle
}

type resetHandler struct {
	deps HandlerDeps
}

func (h resetHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")

	if update.Message == nil || update.Message.From == nil {
		log.ErrorContext(ctx, "Reset handler called with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested data reset", "chat_id", chatID, "user_id", update.Message.From.ID)

	h.deps.Sessions.Reset()

	if err := h.deps.Store.Reset(); err != nil {
		log.ErrorContext(ctx, "Failed to reset post store", "error", err)
		if _, sendErr := h.deps.Messenger.SendMessage(ctx, chatID, h.deps.Config.Messages.ResetError, nil); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send reset error message", "error", sendErr)
		}
		return
	}

	if _, err := h.deps.Messenger.SendMessage(ctx, chatID, h.deps.Config.Messages.ResetDone, nil); err != nil {
		log.ErrorContext(ctx, "Failed to send reset confirmation", "error", err, "chat_id", chatID)
	}
}
