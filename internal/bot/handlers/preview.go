package handlers

import (
	"context"
	"time"
)

const (
	aiProcessingTimeout = 2 * time.Minute
	archiveTimeout      = 5 * time.Second
)

// sendPreview renders the post preview (photo, caption, action keyboard) as
// a fresh message and records its ID for UI bookkeeping. The recorded ID is
// advisory only.
func sendPreview(ctx context.Context, deps HandlerDeps, chatID int64, text string, image []byte) {
	log := deps.Logger.With("handler", "preview")

	msgID, err := deps.Messenger.SendPhoto(ctx, chatID, image, text, previewKeyboard())
	if err != nil {
		log.ErrorContext(ctx, "Failed to send post preview", "error", err, "chat_id", chatID)
		return
	}
	deps.Store.UpdateMessageID(chatID, msgID)
	log.DebugContext(ctx, "Post preview sent", "chat_id", chatID, "message_id", msgID)
}

// reportError rewrites the given status message with an error text, falling
// back to a fresh message when the edit fails (e.g. the message is gone).
// Transport failures are never allowed to fail the operation itself.
func reportError(ctx context.Context, deps HandlerDeps, chatID int64, statusMsgID int, text string) {
	log := deps.Logger.With("handler", "report_error")

	if statusMsgID != 0 {
		if err := deps.Messenger.EditText(ctx, chatID, statusMsgID, text); err == nil {
			return
		}
	}
	if _, err := deps.Messenger.SendMessage(ctx, chatID, text, nil); err != nil {
		log.ErrorContext(ctx, "Failed to deliver error message", "error", err, "chat_id", chatID)
	}
}

// deleteQuietly removes a message, logging failures instead of propagating
// them. Used for processing notices and consumed user inputs.
func deleteQuietly(ctx context.Context, deps HandlerDeps, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := deps.Messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		deps.Logger.WarnContext(ctx, "Failed to delete message", "error", err, "chat_id", chatID, "message_id", messageID)
	}
}
