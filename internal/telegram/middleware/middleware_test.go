package middleware

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestRateLimiter(t *testing.T) {
	sender := &fakeSender{}
	rl := NewRateLimiterMiddleware(3, 3, zap.NewNop(), sender)

	handled := 0
	for i := 0; i < 5; i++ {
		rl.Handle(textUpdate(1, "hi"), func(tgbotapi.Update) { handled++ })
	}

	if handled != 3 {
		t.Errorf("handled = %d, want 3", handled)
	}
	if len(sender.sent) != 1 {
		t.Errorf("warnings sent = %d, want 1", len(sender.sent))
	}

	// limits are per user
	rl.Handle(textUpdate(2, "hi"), func(tgbotapi.Update) { handled++ })
	if handled != 4 {
		t.Errorf("second user was limited")
	}
}

func TestRecovery(t *testing.T) {
	sender := &fakeSender{}
	m := NewRecoveryMiddleware(zap.NewNop(), sender)

	m.Handle(textUpdate(1, "boom"), func(tgbotapi.Update) { panic("handler bug") })

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	sender := &fakeSender{}
	rl := NewRateLimiterMiddleware(60, 1, zap.NewNop(), sender)
	clock := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return clock }

	handled := 0
	next := func(tgbotapi.Update) { handled++ }

	rl.Handle(textUpdate(1, "a"), next)
	rl.Handle(textUpdate(1, "b"), next)
	if handled != 1 {
		t.Fatalf("handled = %d, want 1", handled)
	}

	clock = clock.Add(time.Second)
	rl.Handle(textUpdate(1, "c"), next)
	if handled != 2 {
		t.Errorf("token not refilled after one second")
	}
}

func TestDetachedCallbackPassesThrough(t *testing.T) {
	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 1}}}
	if _, _, ok := origin(update); ok {
		t.Fatal("origin of detached callback should not be ok")
	}

	called := false
	NewRateLimiterMiddleware(1, 1, zap.NewNop(), &fakeSender{}).Handle(update, func(tgbotapi.Update) { called = true })
	NewLoggingMiddleware(zap.NewNop()).Handle(update, func(tgbotapi.Update) {})
	if !called {
		t.Error("update without origin was dropped")
	}
}
