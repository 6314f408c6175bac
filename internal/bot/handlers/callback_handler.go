package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/akorotkov/pressbot/internal/database"
	"github.com/akorotkov/pressbot/internal/session"
)

type callbackHandler struct {
	deps HandlerDeps
}

// NewCallbackHandler returns the handler for inline button presses. Every
// action of the review/edit menus is dispatched through one exhaustive
// switch over the Action enum.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

func (h callbackHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	deps := h.deps
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	log := deps.Logger.With("handler", "callback")

	if err := deps.Messenger.AnswerCallback(ctx, cq.ID, "", false); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}

	if cq.Message.Message == nil {
		log.WarnContext(ctx, "Callback refers to an inaccessible message", "data", cq.Data)
		return
	}
	chatID := cq.Message.Message.Chat.ID
	messageID := cq.Message.Message.ID

	action, ok := ParseAction(cq.Data)
	if !ok {
		log.WarnContext(ctx, "Unknown callback data", "data", cq.Data, "chat_id", chatID)
		return
	}

	log.InfoContext(ctx, "Handling callback action", "action", action, "chat_id", chatID)

	switch action {
	case ActionSend:
		h.handleSend(ctx, chatID, messageID)
	case ActionCancel:
		h.handleCancel(ctx, chatID, messageID)
	case ActionEdit:
		h.switchMenu(ctx, chatID, messageID, editMenuKeyboard())
	case ActionEditImage:
		h.switchMenu(ctx, chatID, messageID, imageEditKeyboard())
	case ActionEditText:
		h.switchMenu(ctx, chatID, messageID, textEditKeyboard())
	case ActionRegenerateImage:
		h.handleRegenerateImage(ctx, chatID, messageID)
	case ActionUploadImage:
		h.promptForInput(ctx, chatID, session.ModeAwaitImage, deps.Config.Messages.PromptImage)
	case ActionAIEditText:
		h.promptForInput(ctx, chatID, session.ModeAIEdit, deps.Config.Messages.PromptAIEdit)
	case ActionManualEditText:
		h.promptForInput(ctx, chatID, session.ModeManualEdit, deps.Config.Messages.PromptManualEdit)
	case ActionBackToPreview:
		h.switchMenu(ctx, chatID, messageID, previewKeyboard())
	case ActionBackToEdit:
		h.switchMenu(ctx, chatID, messageID, editMenuKeyboard())
	case ActionCancelOperation:
		h.handleCancelOperation(ctx, chatID, messageID)
	}
}

// handleSend publishes the pending post to the target channel, archives it,
// and destroys the record.
func (h callbackHandler) handleSend(ctx context.Context, chatID int64, messageID int) {
	deps := h.deps
	log := deps.Logger.With("handler", "send", "chat_id", chatID)

	rec := deps.Store.Get(chatID)
	if rec == nil {
		h.editCaptionQuietly(ctx, chatID, messageID, deps.Config.Messages.PostNotFound)
		return
	}

	targetChatID := deps.Config.Telegram.TargetChatID
	if _, err := deps.Messenger.SendPhoto(ctx, targetChatID, rec.Image, rec.Text, nil); err != nil {
		log.ErrorContext(ctx, "Failed to publish post", "error", err, "target_chat_id", targetChatID)
		h.editCaptionQuietly(ctx, chatID, messageID, fmt.Sprintf(deps.Config.Messages.SendError, err))
		return
	}

	log.InfoContext(ctx, "Post published", "target_chat_id", targetChatID, "text_len", len(rec.Text))
	h.archivePost(ctx, rec.ChatID, rec.Text, rec.OriginalText, len(rec.Image))

	if err := deps.Store.Delete(chatID); err != nil {
		log.ErrorContext(ctx, "Failed to delete record after publish", "error", err)
	}

	h.editCaptionQuietly(ctx, chatID, messageID, fmt.Sprintf(deps.Config.Messages.PostPublished, rec.Text))
}

// archivePost records the publication in the archive database. Failures are
// logged only; archiving never blocks or reverts a publication.
func (h callbackHandler) archivePost(ctx context.Context, chatID int64, text, originalText string, imageSize int) {
	deps := h.deps
	if deps.Archive == nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	post := &database.PublishedPost{
		ChatID:       chatID,
		Text:         text,
		OriginalText: originalText,
		ImageSize:    imageSize,
		PublishedAt:  time.Now().UTC(),
	}
	if err := deps.Archive.SavePost(dbCtx, post); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to archive published post", "error", err, "chat_id", chatID)
	}
}

func (h callbackHandler) handleCancel(ctx context.Context, chatID int64, messageID int) {
	deps := h.deps

	if err := deps.Store.Delete(chatID); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to delete record on cancel", "error", err, "chat_id", chatID)
	}
	h.editCaptionQuietly(ctx, chatID, messageID, deps.Config.Messages.PostCancelled)
}

// switchMenu swaps the inline keyboard on the preview message. Menu state is
// UI-only; no session mode changes here.
func (h callbackHandler) switchMenu(ctx context.Context, chatID int64, messageID int, markup *models.InlineKeyboardMarkup) {
	if err := h.deps.Messenger.EditReplyMarkup(ctx, chatID, messageID, markup); err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to switch menu", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}

// handleRegenerateImage replaces the post image with a freshly generated
// one. Image generation itself degrades to a placeholder instead of failing;
// only the prompt step can surface an error.
func (h callbackHandler) handleRegenerateImage(ctx context.Context, chatID int64, messageID int) {
	deps := h.deps
	log := deps.Logger.With("handler", "regenerate_image", "chat_id", chatID)

	rec := deps.Store.Get(chatID)
	if rec == nil {
		h.editCaptionQuietly(ctx, chatID, messageID, deps.Config.Messages.PostNotFound)
		return
	}

	statusMsgID, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.GeneratingImage, nil)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send generating notice", "error", err)
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	prompt, err := deps.Gemini.ImagePrompt(aiCtx, rec.Text)
	if err != nil {
		log.ErrorContext(ctx, "Image prompt generation failed", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ImageError, err))
		return
	}

	image := deps.Gemini.GenerateImage(aiCtx, prompt)

	if _, err := deps.Store.UpdateImage(chatID, image); err != nil {
		log.ErrorContext(ctx, "Failed to update post image", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ImageError, err))
		return
	}

	// Refresh the preview in place; fall back to a fresh preview message
	// when the edit fails.
	if err := deps.Messenger.EditPhoto(ctx, chatID, messageID, image, rec.Text, previewKeyboard()); err != nil {
		log.WarnContext(ctx, "Failed to edit preview in place, sending a new one", "error", err)
		sendPreview(ctx, deps, chatID, rec.Text, image)
	}

	deleteQuietly(ctx, deps, chatID, statusMsgID)
}

// promptForInput enters an editing mode and asks the user for the
// corresponding free-form input. Setting the mode replaces whatever mode was
// active before, so only one can ever be armed.
func (h callbackHandler) promptForInput(ctx context.Context, chatID int64, mode session.Mode, prompt string) {
	deps := h.deps

	deps.Sessions.Set(chatID, mode)
	if _, err := deps.Messenger.SendMessage(ctx, chatID, prompt, cancelKeyboard()); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send input prompt", "error", err, "chat_id", chatID, "mode", mode.String())
	}
}

// handleCancelOperation aborts whatever input the chat was waiting for. The
// pending post, if any, survives and its preview is rendered again. The
// button press was already answered on entry; answering a query twice is
// rejected by the API, so without a record the rewritten prompt message is
// the only acknowledgment.
func (h callbackHandler) handleCancelOperation(ctx context.Context, chatID int64, messageID int) {
	deps := h.deps
	log := deps.Logger.With("handler", "cancel_operation", "chat_id", chatID)

	deps.Sessions.Clear(chatID)

	rec := deps.Store.Get(chatID)

	// The prompt message is plain text; rewrite it, or drop it when the
	// rewrite fails.
	if err := deps.Messenger.EditText(ctx, chatID, messageID, deps.Config.Messages.OperationDone); err != nil {
		log.WarnContext(ctx, "Failed to edit prompt message", "error", err)
		deleteQuietly(ctx, deps, chatID, messageID)
	}

	if rec != nil {
		sendPreview(ctx, deps, chatID, rec.Text, rec.Image)
	}
}

func (h callbackHandler) editCaptionQuietly(ctx context.Context, chatID int64, messageID int, caption string) {
	if err := h.deps.Messenger.EditCaption(ctx, chatID, messageID, caption, nil); err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to edit caption, sending fresh message", "error", err)
		if _, sendErr := h.deps.Messenger.SendMessage(ctx, chatID, caption, nil); sendErr != nil {
			h.deps.Logger.ErrorContext(ctx, "Failed to send fallback message", "error", sendErr, "chat_id", chatID)
		}
	}
}
