package handlers

import (
	"context"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/saarthi/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// deliver sends text that must reach the user, such as an answer, retrying
// with the configured backoff. Unlike sendMessage it reports the failure.
func (h *BaseHandler) deliver(ctx context.Context, chatID int64, text string, rc *pkgRetry.RetryConfig) error {
	msg := tgbotapi.NewMessage(chatID, text)
	send := func(context.Context) error {
		_, err := h.api.Send(msg)
		return err
	}

	err := pkgRetry.Do(ctx, rc, send, retry.OnRetry(func(n uint, err error) {
		ctxzap.Warn(ctx, "message delivery failed",
			zap.Error(err),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", rc.Attempts),
			zap.Int64("chat_id", chatID),
		)
	}))
	if err != nil {
		ctxzap.Error(ctx, "giving up on message delivery", zap.Error(err), zap.Int64("chat_id", chatID))
	}
	return err
}
