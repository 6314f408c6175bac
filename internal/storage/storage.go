// Package storage provides the durable store for pending posts. Each chat
// owns at most one PostRecord at a time; every mutation rewrites the full
// JSON snapshot on disk before returning so a crash after a successful call
// never loses an approved post.
package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

// PostRecord is the pending post of one chat while it is under review.
type PostRecord struct {
	ChatID int64
	// Text is the current display text of the post.
	Text string
	// OriginalText is the submission as received, before shortening or
	// edits. AI instruction edits start from it so repeated edits do not
	// compound drift.
	OriginalText string
	// Image holds the encoded image bytes, replaced wholesale on every
	// image edit.
	Image []byte
	// MessageID points at the last rendered preview message. Advisory
	// UI bookkeeping only; nothing may rely on it.
	MessageID int
}

// snapshotRecord is the on-disk shape of a PostRecord. The image travels as
// base64 inside the JSON snapshot.
type snapshotRecord struct {
	Text         string `json:"text"`
	OriginalText string `json:"original_text,omitempty"`
	ImageBase64  string `json:"image_base64"`
	ChatID       int64  `json:"chat_id"`
	MessageID    int    `json:"message_id,omitempty"`
}

// Store keeps pending post records in memory and mirrors every change to a
// snapshot file. It is safe for concurrent use; overlapping writes for the
// same chat resolve as last-write-wins.
type Store struct {
	mu     sync.Mutex
	path   string
	posts  map[int64]*PostRecord
	logger *slog.Logger
}

// NewStore opens the store backed by the snapshot file at path, loading any
// previously persisted records. A corrupt or unreadable snapshot is treated
// as empty state: the bad file is removed and the store starts fresh rather
// than failing startup.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage path cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{
		path:   path,
		posts:  make(map[int64]*PostRecord),
		logger: logger.With("component", "storage"),
	}
	s.load()

	s.logger.Info("Post store initialized", "path", path, "records", len(s.posts))
	return s, nil
}

// load reads the snapshot from disk into memory. Any failure discards the
// snapshot and leaves the store empty.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read snapshot, starting empty", "path", s.path, "error", err)
			s.removeSnapshot()
		}
		return
	}

	var raw map[string]snapshotRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Snapshot is corrupt, discarding it", "path", s.path, "error", err)
		s.removeSnapshot()
		return
	}

	for key, sr := range raw {
		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("Snapshot is corrupt, discarding it", "path", s.path, "key", key, "error", err)
			s.posts = make(map[int64]*PostRecord)
			s.removeSnapshot()
			return
		}
		image, err := base64.StdEncoding.DecodeString(sr.ImageBase64)
		if err != nil {
			s.logger.Warn("Snapshot is corrupt, discarding it", "path", s.path, "chat_id", chatID, "error", err)
			s.posts = make(map[int64]*PostRecord)
			s.removeSnapshot()
			return
		}
		s.posts[chatID] = &PostRecord{
			ChatID:       chatID,
			Text:         sr.Text,
			OriginalText: sr.OriginalText,
			Image:        image,
			MessageID:    sr.MessageID,
		}
	}
}

func (s *Store) removeSnapshot() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove snapshot file", "path", s.path, "error", err)
	}
}

// flush serializes the whole in-memory map as one replacement snapshot.
// Caller must hold s.mu.
func (s *Store) flush() error {
	raw := make(map[string]snapshotRecord, len(s.posts))
	for chatID, rec := range s.posts {
		raw[strconv.FormatInt(chatID, 10)] = snapshotRecord{
			Text:         rec.Text,
			OriginalText: rec.OriginalText,
			ImageBase64:  base64.StdEncoding.EncodeToString(rec.Image),
			ChatID:       rec.ChatID,
			MessageID:    rec.MessageID,
		}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Put saves the record for its chat, silently replacing any existing one.
func (s *Store) Put(chatID int64, rec *PostRecord) error {
	if rec == nil {
		return errors.New("cannot save nil record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ChatID = chatID
	s.posts[chatID] = rec
	if err := s.flush(); err != nil {
		return err
	}
	s.logger.Debug("Post record saved", "chat_id", chatID, "image_size", len(rec.Image))
	return nil
}

// Get returns a copy of the chat's record, or nil when no record exists.
// Copying keeps callers from mutating store-owned state between flushes.
func (s *Store) Get(chatID int64) *PostRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[chatID]
	if !ok {
		return nil
	}
	cp := *rec
	cp.Image = append([]byte(nil), rec.Image...)
	return &cp
}

// UpdateText replaces the display text of the chat's record. Returns false
// without touching persisted state when the chat has no record; that is a
// reported not-found condition, not an error.
func (s *Store) UpdateText(chatID int64, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[chatID]
	if !ok {
		return false, nil
	}
	rec.Text = text
	if err := s.flush(); err != nil {
		return false, err
	}
	s.logger.Debug("Post text updated", "chat_id", chatID)
	return true, nil
}

// UpdateImage replaces the image of the chat's record wholesale. Same
// not-found contract as UpdateText.
func (s *Store) UpdateImage(chatID int64, image []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[chatID]
	if !ok {
		return false, nil
	}
	rec.Image = append([]byte(nil), image...)
	if err := s.flush(); err != nil {
		return false, err
	}
	s.logger.Debug("Post image updated", "chat_id", chatID, "image_size", len(image))
	return true, nil
}

// UpdateMessageID records the preview message identifier. Best-effort UI
// bookkeeping; a missing record is silently ignored.
func (s *Store) UpdateMessageID(chatID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[chatID]
	if !ok {
		return
	}
	rec.MessageID = messageID
	if err := s.flush(); err != nil {
		s.logger.Warn("Failed to persist preview message id", "chat_id", chatID, "error", err)
	}
}

// Delete removes the chat's record. No-op when absent.
func (s *Store) Delete(chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[chatID]; !ok {
		return nil
	}
	delete(s.posts, chatID)
	if err := s.flush(); err != nil {
		return err
	}
	s.logger.Debug("Post record deleted", "chat_id", chatID)
	return nil
}

// Reset drops every record and deletes the snapshot file entirely.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make(map[int64]*PostRecord)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	s.logger.Info("Post store cleared", "path", s.path)
	return nil
}

// Len reports how many pending posts are currently stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}
