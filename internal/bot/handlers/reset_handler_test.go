package handlers

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/akorotkov/pressbot/internal/session"
)

func TestResetClearsAllState(t *testing.T) {
	deps, msgr, _ := testDeps(t)
	seedRecord(t, deps, 7, "text", "original", []byte("img"))
	seedRecord(t, deps, 8, "other", "other original", []byte("img2"))
	deps.Sessions.Set(7, session.ModeAIEdit)
	deps.Sessions.Set(8, session.ModeAwaitImage)
	handler := NewResetHandler(deps)

	handler(context.Background(), nil, textUpdate(7, 42, "/reset"))

	if deps.Store.Len() != 0 {
		t.Error("records survived the reset")
	}
	if deps.Sessions.Get(7) != session.ModeNone || deps.Sessions.Get(8) != session.ModeNone {
		t.Error("session modes survived the reset")
	}
	if len(msgr.sentMessages) != 1 || msgr.sentMessages[0].text != deps.Config.Messages.ResetDone {
		t.Error("expected the reset confirmation")
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		wantCalled bool
	}{
		{"admin passes", 42, true},
		{"other user blocked", 99, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, msgr, _ := testDeps(t)

			called := false
			wrapped := AdminOnly(deps)(func(_ context.Context, _ *bot.Bot, _ *models.Update) {
				called = true
			})

			wrapped(context.Background(), nil, textUpdate(7, tt.userID, "/reset"))

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if !tt.wantCalled {
				if len(msgr.sentMessages) != 1 || msgr.sentMessages[0].text != deps.Config.Messages.NotAuthorized {
					t.Error("expected the not-authorized message")
				}
			}
		})
	}
}
