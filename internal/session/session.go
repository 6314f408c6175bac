// Package session tracks the per-chat editing mode that decides how the next
// free-form message from a chat is interpreted. Modes live for the process
// lifetime only; they are intentionally not persisted across restarts.
package session

import "sync"

// Mode identifies what the next free-form input from a chat means.
// A single enum value per chat makes "at most one editing mode active"
// an invariant of the type rather than a convention between flags.
type Mode int

const (
	// ModeNone means inbound messages are treated as fresh news submissions.
	ModeNone Mode = iota
	// ModeManualEdit means the next text message replaces the post text verbatim.
	ModeManualEdit
	// ModeAIEdit means the next text message is an instruction for AI editing.
	ModeAIEdit
	// ModeAwaitImage means the next message is expected to carry a photo.
	ModeAwaitImage
)

// String returns a short name for logging.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeManualEdit:
		return "manual_edit"
	case ModeAIEdit:
		return "ai_edit"
	case ModeAwaitImage:
		return "await_image"
	default:
		return "unknown"
	}
}

// Tracker holds the current editing mode for each chat. The bot library
// dispatches handlers on separate goroutines, so access is mutex-guarded.
type Tracker struct {
	mu    sync.Mutex
	modes map[int64]Mode
}

// NewTracker creates an empty tracker with every chat in ModeNone.
func NewTracker() *Tracker {
	return &Tracker{modes: make(map[int64]Mode)}
}

// Set switches the chat to the given mode, replacing any previous mode.
func (t *Tracker) Set(chatID int64, mode Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if mode == ModeNone {
		delete(t.modes, chatID)
		return
	}
	t.modes[chatID] = mode
}

// Get returns the chat's current mode, ModeNone if the chat is unknown.
func (t *Tracker) Get(chatID int64) Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modes[chatID]
}

// Clear returns the chat to ModeNone.
func (t *Tracker) Clear(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.modes, chatID)
}

// Reset drops the mode of every chat, used by the /reset command.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modes = make(map[int64]Mode)
}
