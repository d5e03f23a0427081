package handlers

import (
	"context"
	"errors"

	"github.com/futig/saarthi/internal/entity"
	pkgRetry "github.com/futig/saarthi/internal/pkg/retry"
	"github.com/futig/saarthi/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChatHandler turns plain text messages into questions for the chat's
// conversation.
type ChatHandler struct {
	BaseHandler
	registry ConversationRegistry
	retryCfg *pkgRetry.RetryConfig
}

func NewChatHandler(api Sender, registry ConversationRegistry, retryCfg *pkgRetry.RetryConfig, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		BaseHandler: newBaseHandler(api, logger),
		registry:    registry,
		retryCfg:    retryCfg,
	}
}

func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	return h.Ask(ctx, msg.ChatID, msg.Text)
}

// Ask submits text as a question in the chat's conversation and replies
// with the answer. While an earlier question of the chat is unanswered the
// user only gets a busy notice.
func (h *ChatHandler) Ask(ctx context.Context, chatID int64, text string) error {
	conv := h.registry.Get(chatID)
	if conv.InFlight() {
		h.sendMessage(chatID, render.MsgBusy, nil)
		return nil
	}

	stopTyping := keepTyping(ctx, h.api, chatID, h.logger)
	turn, err := conv.SubmitText(ctx, text)
	stopTyping()

	switch {
	case errors.Is(err, entity.ErrRequestInFlight):
		h.sendMessage(chatID, render.MsgBusy, nil)
		return nil
	case errors.Is(err, entity.ErrEmptyInput):
		h.sendMessage(chatID, render.ErrInvalidInput, nil)
		return nil
	case err != nil:
		return err
	}

	ctxzap.Info(ctx, "question answered",
		zap.Int64("chat_id", chatID),
		zap.Int("citations", len(turn.Citations)),
		zap.String("detected_language", turn.DetectedLanguage),
	)

	return h.deliver(ctx, chatID, render.RenderTurn(*turn), h.retryCfg)
}
