// Package handlers contains the Telegram message and callback handlers that
// drive the post review/edit loop.
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/akorotkov/pressbot/internal/session"
	"github.com/akorotkov/pressbot/internal/storage"
)

type newsHandler struct {
	deps HandlerDeps
}

// NewNewsHandler returns the default handler for free-form messages. How a
// message is interpreted depends on the chat's current editing mode: with no
// mode active it is a fresh news submission; otherwise it is the input the
// active mode is waiting for.
func NewNewsHandler(deps HandlerDeps) bot.HandlerFunc {
	return newsHandler{deps}.Handle
}

func (h newsHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	switch h.deps.Sessions.Get(chatID) {
	case session.ModeManualEdit:
		h.handleManualEditInput(ctx, msg)
	case session.ModeAIEdit:
		h.handleAIEditInput(ctx, msg)
	case session.ModeAwaitImage:
		h.handleImageUpload(ctx, msg)
	default:
		h.handleSubmission(ctx, msg)
	}
}

// handleSubmission processes a candidate news submission: shorten the text,
// obtain an image (supplied or generated), store the pending post, and render
// the preview. A backend failure drops the submission without leaving a
// partial record behind.
func (h newsHandler) handleSubmission(ctx context.Context, msg *models.Message) {
	deps := h.deps
	chatID := msg.Chat.ID
	log := deps.Logger.With("handler", "news", "chat_id", chatID)

	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	hasText := msg.Text != ""
	hasPhotoWithCaption := len(msg.Photo) > 0 && msg.Caption != ""
	hasVideoWithCaption := msg.Video != nil && msg.Caption != ""

	// Bare media without a caption is not a submission; ignore it silently.
	if !hasText && !hasPhotoWithCaption && !hasVideoWithCaption {
		log.DebugContext(ctx, "Message does not qualify as a news submission")
		return
	}

	newsText := msg.Text
	if newsText == "" {
		newsText = msg.Caption
	}

	log.InfoContext(ctx, "News submission received", "text_len", len(newsText), "photos", len(msg.Photo), "has_video", msg.Video != nil)

	statusMsgID, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.Processing, nil)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send processing notice", "error", err)
	}

	// Exactly one photo and no video means the user chose the image
	// themselves; anything else goes through generation.
	userImageFileID := ""
	if len(msg.Photo) == 1 && msg.Video == nil {
		userImageFileID = msg.Photo[0].FileID
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	shortText, err := deps.Gemini.Summarize(aiCtx, newsText)
	if err != nil {
		log.ErrorContext(ctx, "News summarization failed", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ProcessingError, err))
		return
	}

	var image []byte
	if userImageFileID != "" {
		image, _, err = deps.Messenger.DownloadPhoto(ctx, userImageFileID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to download supplied photo", "error", err)
			reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ProcessingError, err))
			return
		}
		log.DebugContext(ctx, "Using user-supplied image", "size", len(image))
	} else {
		if statusMsgID != 0 {
			if err := deps.Messenger.EditText(ctx, chatID, statusMsgID, deps.Config.Messages.GeneratingImage); err != nil {
				log.WarnContext(ctx, "Failed to update processing notice", "error", err)
			}
		}

		prompt, err := deps.Gemini.ImagePrompt(aiCtx, shortText)
		if err != nil {
			log.ErrorContext(ctx, "Image prompt generation failed", "error", err)
			reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ProcessingError, err))
			return
		}
		image = deps.Gemini.GenerateImage(aiCtx, prompt)
	}

	rec := &storage.PostRecord{
		Text:         shortText,
		OriginalText: newsText,
		Image:        image,
	}
	if err := deps.Store.Put(chatID, rec); err != nil {
		log.ErrorContext(ctx, "Failed to persist post record", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.ProcessingError, err))
		return
	}

	deleteQuietly(ctx, deps, chatID, statusMsgID)
	sendPreview(ctx, deps, chatID, shortText, image)
}

// handleManualEditInput consumes the replacement text while ModeManualEdit
// is active. The text is stored verbatim; no AI call is made and the
// original submission text is untouched.
func (h newsHandler) handleManualEditInput(ctx context.Context, msg *models.Message) {
	deps := h.deps
	chatID := msg.Chat.ID
	log := deps.Logger.With("handler", "manual_edit", "chat_id", chatID)

	// Not text yet; keep waiting.
	if msg.Text == "" {
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.PromptManualEdit, cancelKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to re-prompt for text", "error", err)
		}
		return
	}

	newText := msg.Text
	deps.Sessions.Clear(chatID)

	rec := deps.Store.Get(chatID)
	if rec == nil {
		log.WarnContext(ctx, "Manual edit received but no pending post exists")
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.PostNotFound, nil); err != nil {
			log.ErrorContext(ctx, "Failed to send not-found message", "error", err)
		}
		return
	}

	if _, err := deps.Store.UpdateText(chatID, newText); err != nil {
		log.ErrorContext(ctx, "Failed to update post text", "error", err)
		reportError(ctx, deps, chatID, 0, fmt.Sprintf(deps.Config.Messages.EditError, err))
		return
	}

	deleteQuietly(ctx, deps, chatID, msg.ID)
	sendPreview(ctx, deps, chatID, newText, rec.Image)
}

// handleAIEditInput consumes the edit instruction while ModeAIEdit is
// active. The rewrite starts from the original submission text so chained
// edits do not compound; a backend failure leaves the record unchanged.
func (h newsHandler) handleAIEditInput(ctx context.Context, msg *models.Message) {
	deps := h.deps
	chatID := msg.Chat.ID
	log := deps.Logger.With("handler", "ai_edit", "chat_id", chatID)

	if msg.Text == "" {
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.PromptAIEdit, cancelKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to re-prompt for instruction", "error", err)
		}
		return
	}

	instruction := msg.Text
	deps.Sessions.Clear(chatID)

	rec := deps.Store.Get(chatID)
	if rec == nil {
		log.WarnContext(ctx, "AI edit instruction received but no pending post exists")
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.PostNotFound, nil); err != nil {
			log.ErrorContext(ctx, "Failed to send not-found message", "error", err)
		}
		return
	}

	statusMsgID, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.Processing, nil)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send processing notice", "error", err)
	}

	baseText := rec.OriginalText
	if baseText == "" {
		baseText = rec.Text
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	editedText, err := deps.Gemini.EditText(aiCtx, baseText, instruction)
	if err != nil {
		log.ErrorContext(ctx, "AI text edit failed", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.EditError, err))
		return
	}

	if _, err := deps.Store.UpdateText(chatID, editedText); err != nil {
		log.ErrorContext(ctx, "Failed to update post text", "error", err)
		reportError(ctx, deps, chatID, statusMsgID, fmt.Sprintf(deps.Config.Messages.EditError, err))
		return
	}

	deleteQuietly(ctx, deps, chatID, msg.ID)
	deleteQuietly(ctx, deps, chatID, statusMsgID)
	sendPreview(ctx, deps, chatID, editedText, rec.Image)
}

// handleImageUpload consumes the replacement photo while ModeAwaitImage is
// active. A message without a photo leaves the mode active and asks again.
func (h newsHandler) handleImageUpload(ctx context.Context, msg *models.Message) {
	deps := h.deps
	chatID := msg.Chat.ID
	log := deps.Logger.With("handler", "image_upload", "chat_id", chatID)

	if len(msg.Photo) == 0 {
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.NeedImage, cancelKeyboard()); err != nil {
			log.ErrorContext(ctx, "Failed to send need-image message", "error", err)
		}
		return
	}

	deps.Sessions.Clear(chatID)

	// Telegram offers several sizes of the same photo; take the largest.
	best := msg.Photo[0]
	for _, p := range msg.Photo[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}

	image, _, err := deps.Messenger.DownloadPhoto(ctx, best.FileID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to download uploaded photo", "error", err)
		reportError(ctx, deps, chatID, 0, fmt.Sprintf(deps.Config.Messages.ImageError, err))
		return
	}

	rec := deps.Store.Get(chatID)
	if rec == nil {
		log.WarnContext(ctx, "Image uploaded but no pending post exists")
		if _, err := deps.Messenger.SendMessage(ctx, chatID, deps.Config.Messages.PostNotFound, nil); err != nil {
			log.ErrorContext(ctx, "Failed to send not-found message", "error", err)
		}
		return
	}

	if _, err := deps.Store.UpdateImage(chatID, image); err != nil {
		log.ErrorContext(ctx, "Failed to update post image", "error", err)
		reportError(ctx, deps, chatID, 0, fmt.Sprintf(deps.Config.Messages.ImageError, err))
		return
	}

	deleteQuietly(ctx, deps, chatID, msg.ID)
	sendPreview(ctx, deps, chatID, rec.Text, image)
}
