package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/akorotkov/pressbot/internal/config"
	"github.com/akorotkov/pressbot/internal/database"
	"github.com/akorotkov/pressbot/internal/gemini"
	"github.com/akorotkov/pressbot/internal/session"
	"github.com/akorotkov/pressbot/internal/storage"
)

// fakeMessenger records outbound transport calls so tests can assert on the
// conversation without a live bot connection.
type fakeMessenger struct {
	mu     sync.Mutex
	nextID int

	sentMessages   []sentMessage
	sentPhotos     []sentPhoto
	editedTexts    []editedText
	editedCaptions []editedText
	editedMarkups  []models.ReplyMarkup
	editedPhotos   []sentPhoto
	deleted        []int
	answers        []string

	files map[string][]byte

	sendPhotoErr   error
	editTextErr    error
	editCaptionErr error
	editPhotoErr   error
	downloadErr    error
}

type sentMessage struct {
	chatID int64
	text   string
	markup models.ReplyMarkup
}

type sentPhoto struct {
	chatID  int64
	image   []byte
	caption string
	markup  models.ReplyMarkup
}

type editedText struct {
	chatID    int64
	messageID int
	text      string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, files: make(map[string][]byte)}
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, markup models.ReplyMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sentMessages = append(f.sentMessages, sentMessage{chatID, text, markup})
	return f.nextID, nil
}

func (f *fakeMessenger) SendPhoto(_ context.Context, chatID int64, image []byte, caption string, markup models.ReplyMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendPhotoErr != nil {
		return 0, f.sendPhotoErr
	}
	f.nextID++
	f.sentPhotos = append(f.sentPhotos, sentPhoto{chatID, image, caption, markup})
	return f.nextID, nil
}

func (f *fakeMessenger) EditCaption(_ context.Context, chatID int64, messageID int, caption string, _ models.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editCaptionErr != nil {
		return f.editCaptionErr
	}
	f.editedCaptions = append(f.editedCaptions, editedText{chatID, messageID, caption})
	return nil
}

func (f *fakeMessenger) EditText(_ context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editTextErr != nil {
		return f.editTextErr
	}
	f.editedTexts = append(f.editedTexts, editedText{chatID, messageID, text})
	return nil
}

func (f *fakeMessenger) EditReplyMarkup(_ context.Context, _ int64, _ int, markup models.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editedMarkups = append(f.editedMarkups, markup)
	return nil
}

func (f *fakeMessenger) EditPhoto(_ context.Context, chatID int64, messageID int, image []byte, caption string, markup models.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editPhotoErr != nil {
		return f.editPhotoErr
	}
	f.editedPhotos = append(f.editedPhotos, sentPhoto{chatID, image, caption, markup})
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, _, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) DownloadPhoto(_ context.Context, fileID string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, "", f.downloadErr
	}
	data, ok := f.files[fileID]
	if !ok {
		return nil, "", errors.New("unknown file id")
	}
	return data, "image/jpeg", nil
}

// fakeGemini returns canned responses and counts calls. A nil image means
// GenerateImage degrades to the placeholder, matching the real client.
type fakeGemini struct {
	summary      string
	summarizeErr error
	prompt       string
	promptErr    error
	edited       string
	editErr      error
	image        []byte

	editBase        string
	editInstruction string
	generateCalls   int
}

func (f *fakeGemini) Summarize(_ context.Context, _ string) (string, error) {
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summary, nil
}

func (f *fakeGemini) ImagePrompt(_ context.Context, _ string) (string, error) {
	if f.promptErr != nil {
		return "", f.promptErr
	}
	return f.prompt, nil
}

func (f *fakeGemini) EditText(_ context.Context, currentText, instruction string) (string, error) {
	f.editBase = currentText
	f.editInstruction = instruction
	if f.editErr != nil {
		return "", f.editErr
	}
	return f.edited, nil
}

func (f *fakeGemini) GenerateImage(_ context.Context, _ string) []byte {
	f.generateCalls++
	if f.image != nil {
		return f.image
	}
	return gemini.PlaceholderImage()
}

// fakeArchive records saved posts and serves a canned recent list.
type fakeArchive struct {
	recent    []*database.PublishedPost
	recentErr error
	saved     []*database.PublishedPost
}

func (f *fakeArchive) Ping(context.Context) error { return nil }

func (f *fakeArchive) SavePost(_ context.Context, post *database.PublishedPost) error {
	f.saved = append(f.saved, post)
	return nil
}

func (f *fakeArchive) RecentPosts(_ context.Context, limit int) ([]*database.PublishedPost, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeArchive) RunMaintenance(context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{
			Token:        "test-token",
			TargetChatID: -100200300,
			AdminUserID:  42,
		},
		Messages: config.MessagesConfig{
			Welcome:          "welcome",
			NotAuthorized:    "not authorized",
			Processing:       "processing",
			GeneratingImage:  "generating image",
			ProcessingError:  "processing error: %s",
			PostNotFound:     "post not found",
			PostPublished:    "published: %s",
			PostCancelled:    "cancelled",
			SendError:        "send error: %s",
			PromptAIEdit:     "describe the edit",
			PromptManualEdit: "send the new text",
			PromptImage:      "send the new image",
			NeedImage:        "need an image",
			EditError:        "edit error: %s",
			ImageError:       "image error: %s",
			OperationDone:    "operation cancelled",
			ResetDone:        "reset done",
			ResetError:       "reset failed",
			RecentHeader:     "recently published:",
			RecentEmpty:      "nothing published yet",
			RecentError:      "recent error: %s",
		},
	}
}

func testDeps(t *testing.T) (HandlerDeps, *fakeMessenger, *fakeGemini) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "posts.json"), log)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	msgr := newFakeMessenger()
	gem := &fakeGemini{summary: "short text", prompt: "an image prompt", edited: "edited text"}

	deps := HandlerDeps{
		Logger:    log,
		Config:    testConfig(),
		Store:     store,
		Sessions:  session.NewTracker(),
		Gemini:    gem,
		Archive:   &fakeArchive{},
		Messenger: msgr,
	}
	return deps, msgr, gem
}

func textUpdate(chatID int64, userID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   10,
			Text: text,
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: userID},
		},
	}
}

func photoUpdate(chatID int64, caption string, photos ...models.PhotoSize) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:      11,
			Caption: caption,
			Photo:   photos,
			Chat:    models.Chat{ID: chatID},
			From:    &models.User{ID: 1},
		},
	}
}

func callbackUpdate(chatID int64, messageID int, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{
					ID:   messageID,
					Chat: models.Chat{ID: chatID},
				},
			},
		},
	}
}
