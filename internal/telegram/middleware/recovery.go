package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const msgPanic = "❌ Something went wrong. Please try again or use /start"

// RecoveryMiddleware turns a handler panic into a log entry and an apology
// to the user, keeping the bot alive.
type RecoveryMiddleware struct {
	logger *zap.Logger
	api    Sender
}

func NewRecoveryMiddleware(logger *zap.Logger, api Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{logger: logger, api: api}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
			zap.Int("update_id", update.UpdateID),
		)

		if _, chatID, ok := origin(update); ok {
			if _, err := m.api.Send(tgbotapi.NewMessage(chatID, msgPanic)); err != nil {
				m.logger.Error("failed to send panic notice", zap.Error(err), zap.Int64("chat_id", chatID))
			}
		}
	}()

	next(update)
}
