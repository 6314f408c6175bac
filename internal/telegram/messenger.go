package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout = 30 * time.Second
	maxPhotoDownloadSize = 10 * 1024 * 1024
)

// Messenger is the outbound transport capability consumed by the interaction
// handlers: sending and editing messages, rendering inline keyboards, and
// downloading photo attachments. Handlers depend on this interface rather
// than the bot client so the review/edit state machine is testable offline.
type Messenger interface {
	// SendMessage sends a text message and returns its message ID.
	SendMessage(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) (int, error)

	// SendPhoto sends a photo with a caption and returns its message ID.
	SendPhoto(ctx context.Context, chatID int64, image []byte, caption string, markup models.ReplyMarkup) (int, error)

	// EditCaption replaces the caption and keyboard of a photo message.
	EditCaption(ctx context.Context, chatID int64, messageID int, caption string, markup models.ReplyMarkup) error

	// EditText replaces the text of a plain message.
	EditText(ctx context.Context, chatID int64, messageID int, text string) error

	// EditReplyMarkup replaces only the inline keyboard of a message.
	EditReplyMarkup(ctx context.Context, chatID int64, messageID int, markup models.ReplyMarkup) error

	// EditPhoto replaces the photo and caption of a message in place.
	EditPhoto(ctx context.Context, chatID int64, messageID int, image []byte, caption string, markup models.ReplyMarkup) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallback acknowledges an inline button press.
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error

	// DownloadPhoto fetches a photo attachment and returns its bytes and
	// detected MIME type.
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, string, error)
}

type botMessenger struct {
	bot   *bot.Bot
	token string
	log   *slog.Logger
}

// NewMessenger wraps a bot client as a Messenger. The token is needed to
// build file download URLs.
func NewMessenger(b *bot.Bot, token string, logger *slog.Logger) Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &botMessenger{
		bot:   b,
		token: token,
		log:   logger.With("component", "messenger"),
	}
}

func (m *botMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) (int, error) {
	msg, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

func (m *botMessenger) SendPhoto(ctx context.Context, chatID int64, image []byte, caption string, markup models.ReplyMarkup) (int, error) {
	msg, err := m.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: "post.png", Data: bytes.NewReader(image)},
		Caption:     caption,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send photo: %w", err)
	}
	return msg.ID, nil
}

func (m *botMessenger) EditCaption(ctx context.Context, chatID int64, messageID int, caption string, markup models.ReplyMarkup) error {
	_, err := m.bot.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Caption:     caption,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("failed to edit caption: %w", err)
	}
	return nil
}

func (m *botMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := m.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message text: %w", err)
	}
	return nil
}

func (m *botMessenger) EditReplyMarkup(ctx context.Context, chatID int64, messageID int, markup models.ReplyMarkup) error {
	_, err := m.bot.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   messageID,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("failed to edit reply markup: %w", err)
	}
	return nil
}

func (m *botMessenger) EditPhoto(ctx context.Context, chatID int64, messageID int, image []byte, caption string, markup models.ReplyMarkup) error {
	_, err := m.bot.EditMessageMedia(ctx, &bot.EditMessageMediaParams{
		ChatID:    chatID,
		MessageID: messageID,
		Media: &models.InputMediaPhoto{
			Media:           "attach://post.png",
			Caption:         caption,
			MediaAttachment: bytes.NewReader(image),
		},
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message media: %w", err)
	}
	return nil
}

func (m *botMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := m.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (m *botMessenger) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	if _, err := m.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       showAlert,
	}); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// DownloadPhoto retrieves file data from Telegram and detects its MIME type.
func (m *botMessenger) DownloadPhoto(ctx context.Context, fileID string) (data []byte, mimeType string, err error) {
	if fileID == "" {
		return nil, "", fmt.Errorf("empty fileID provided")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := m.bot.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram")
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", m.token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxPhotoDownloadSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data")
	}

	return data, http.DetectContentType(data), nil
}
