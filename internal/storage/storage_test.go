package storage_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/akorotkov/pressbot/internal/storage"
)

func newTestStore(t *testing.T) (*storage.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "posts.json")
	s, err := storage.NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, path
}

func TestPutAndGet(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	rec := &storage.PostRecord{
		Text:         "short version",
		OriginalText: "the long original news text",
		Image:        []byte{0x89, 0x50, 0x4e, 0x47},
	}
	if err := s.Put(10, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got := s.Get(10)
	if got == nil {
		t.Fatal("Get returned nil after Put")
	}
	if got.ChatID != 10 {
		t.Errorf("ChatID = %d, want 10", got.ChatID)
	}
	if got.Text != rec.Text || got.OriginalText != rec.OriginalText {
		t.Errorf("texts = (%q, %q), want (%q, %q)", got.Text, got.OriginalText, rec.Text, rec.OriginalText)
	}
	if !bytes.Equal(got.Image, rec.Image) {
		t.Errorf("image = %x, want %x", got.Image, rec.Image)
	}
}

func TestPutReplacesExistingRecord(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := s.Put(1, &storage.PostRecord{Text: "first", Image: []byte("a")}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := s.Put(1, &storage.PostRecord{Text: "second", Image: []byte("b")}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got := s.Get(1)
	if got.Text != "second" {
		t.Errorf("text = %q, want %q", got.Text, "second")
	}
	if !bytes.Equal(got.Image, []byte("b")) {
		t.Errorf("image = %q, want %q", got.Image, "b")
	}
	if got.OriginalText != "" {
		t.Errorf("original text = %q, want empty (no merge with old record)", got.OriginalText)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestUpdateTextOnMissingRecord(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	ok, err := s.UpdateText(99, "new text")
	if err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if ok {
		t.Error("UpdateText on missing record = true, want false")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("snapshot file was written by a no-op update")
	}
}

func TestUpdateImageOnMissingRecord(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ok, err := s.UpdateImage(99, []byte("img"))
	if err != nil {
		t.Fatalf("UpdateImage: %v", err)
	}
	if ok {
		t.Error("UpdateImage on missing record = true, want false")
	}
}

func TestUpdateTextPreservesOriginalText(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := s.Put(5, &storage.PostRecord{Text: "old", OriginalText: "origin", Image: []byte("i")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := s.UpdateText(5, "brand new")
	if err != nil || !ok {
		t.Fatalf("UpdateText = (%v, %v), want (true, nil)", ok, err)
	}

	got := s.Get(5)
	if got.Text != "brand new" {
		t.Errorf("text = %q, want %q", got.Text, "brand new")
	}
	if got.OriginalText != "origin" {
		t.Errorf("original text = %q, want %q", got.OriginalText, "origin")
	}
}

func TestDeleteThenGet(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := s.Put(7, &storage.PostRecord{Text: "t", Image: []byte("i")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(7); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := s.Get(7); got != nil {
		t.Errorf("Get after Delete = %+v, want nil", got)
	}

	// Deleting an absent record is not an error.
	if err := s.Delete(7); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestReloadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "posts.json")
	s, err := storage.NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	image := []byte{0x00, 0x01, 0xfe, 0xff, 0x89, 0x50}
	rec := &storage.PostRecord{
		Text:         "short",
		OriginalText: "original submission",
		Image:        image,
		MessageID:    321,
	}
	if err := s.Put(-1001234, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh store on the same path simulates a process restart.
	reloaded, err := storage.NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore (reload): %v", err)
	}

	got := reloaded.Get(-1001234)
	if got == nil {
		t.Fatal("record lost across reload")
	}
	if got.ChatID != -1001234 {
		t.Errorf("ChatID = %d, want -1001234", got.ChatID)
	}
	if got.Text != rec.Text || got.OriginalText != rec.OriginalText {
		t.Errorf("texts = (%q, %q), want (%q, %q)", got.Text, got.OriginalText, rec.Text, rec.OriginalText)
	}
	if !bytes.Equal(got.Image, image) {
		t.Errorf("image bytes not preserved: %x != %x", got.Image, image)
	}
	if got.MessageID != 321 {
		t.Errorf("MessageID = %d, want 321", got.MessageID)
	}
}

func TestCorruptSnapshotYieldsEmptyStore(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
	}{
		{"not json", "{{{ definitely not json"},
		{"wrong shape", `[1, 2, 3]`},
		{"bad chat id key", `{"not-a-number": {"text": "t", "image_base64": "", "chat_id": 1}}`},
		{"bad base64", `{"1": {"text": "t", "image_base64": "!!!not-base64!!!", "chat_id": 1}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "posts.json")
			if err := os.WriteFile(path, []byte(tc.content), 0o600); err != nil {
				t.Fatalf("write corrupt snapshot: %v", err)
			}

			s, err := storage.NewStore(path, nil)
			if err != nil {
				t.Fatalf("NewStore on corrupt snapshot: %v", err)
			}
			if s.Len() != 0 {
				t.Errorf("Len = %d, want 0", s.Len())
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("corrupt snapshot file was not removed")
			}
		})
	}
}

func TestResetRemovesSnapshotFile(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	if err := s.Put(1, &storage.PostRecord{Text: "t", Image: []byte("i")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("snapshot file still exists after Reset")
	}

	// Reset on an already-empty store is fine.
	if err := s.Reset(); err != nil {
		t.Errorf("second Reset: %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if err := s.Put(3, &storage.PostRecord{Text: "t", Image: []byte{1, 2, 3}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	first := s.Get(3)
	first.Text = "mutated"
	first.Image[0] = 0xff

	second := s.Get(3)
	if second.Text != "t" {
		t.Errorf("store text mutated through Get copy: %q", second.Text)
	}
	if second.Image[0] != 1 {
		t.Errorf("store image mutated through Get copy: %x", second.Image)
	}
}
