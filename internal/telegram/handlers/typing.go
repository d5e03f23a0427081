package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram hides the typing indicator after five seconds.
const typingInterval = 4 * time.Second

// keepTyping shows the typing indicator in chatID until the returned stop
// func is called or ctx ends. stop blocks until the refresher has exited.
func keepTyping(ctx context.Context, api Sender, chatID int64, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	notify := func() {
		if _, err := api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
			logger.Warn("failed to send typing action", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}

	notify()
	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				notify()
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
