package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	recentPostsLimit  = 10
	recentTextSnippet = 120
	recentTimeLayout  = "2006-01-02 15:04"
)

// NewRecentHandler returns a handler for the /recent command. It lists the
// most recently archived publications so an operator can check what actually
// went out to the channel.
func NewRecentHandler(deps HandlerDeps) bot.HandlerFunc {
	return recentHandler{deps}.Handle
}

type recentHandler struct {
	deps HandlerDeps
}

func (h recentHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "recent")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Recent handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	dbCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	posts, err := deps.Archive.RecentPosts(dbCtx, recentPostsLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list archived posts", "error", err)
		if _, sendErr := deps.Messenger.SendMessage(ctx, chatID, fmt.Sprintf(deps.Config.Messages.RecentError, err), nil); sendErr != nil {
			log.ErrorContext(ctx, "Failed to send archive error message", "error", sendErr)
		}
		return
	}

	if len(posts) == 0 {
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.RecentEmpty, nil); err != nil {
			log.ErrorContext(ctx, "Failed to send empty-archive message", "error", err, "chat_id", chatID)
		}
		return
	}

	var b strings.Builder
	b.WriteString(deps.Config.Messages.RecentHeader)
	for _, post := range posts {
		fmt.Fprintf(&b, "\n\n%s\n%s", post.PublishedAt.Format(recentTimeLayout), snippet(post.Text, recentTextSnippet))
	}

	if _, err := deps.Messenger.SendMessage(ctx, chatID, b.String(), nil); err != nil {
		log.ErrorContext(ctx, "Failed to send recent posts list", "error", err, "chat_id", chatID)
		return
	}
	log.InfoContext(ctx, "Listed archived posts", "chat_id", chatID, "count", len(posts))
}

func snippet(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
