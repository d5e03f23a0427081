package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/futig/saarthi/internal/telegram/keyboard"
	"github.com/futig/saarthi/internal/telegram/render"
	"github.com/futig/saarthi/internal/usecase/conversation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline button clicks
type CallbackHandler struct {
	BaseHandler
	registry ConversationRegistry
	keyboard *keyboard.Builder
	chat     *ChatHandler
	exporter *Exporter
}

func NewCallbackHandler(
	api Sender,
	registry ConversationRegistry,
	kb *keyboard.Builder,
	chat *ChatHandler,
	exporter *Exporter,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: newBaseHandler(api, logger),
		registry:    registry,
		keyboard:    kb,
		chat:        chat,
		exporter:    exporter,
	}
}

func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		h.answerCallback(ctx, msg.CallbackID, "❌ Invalid button")
		return nil
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", cb.Action),
		zap.String("value", cb.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch cb.Action {
	case keyboard.ActionExample:
		i, err := strconv.Atoi(cb.Value)
		if err != nil || i < 0 || i >= len(conversation.ExampleQueries) {
			h.answerCallback(ctx, msg.CallbackID, "❌ Unknown example")
			return nil
		}
		h.answerCallback(ctx, msg.CallbackID, "")
		query := conversation.ExampleQueries[i]
		h.sendMessage(msg.ChatID, "❓ "+query, nil)
		return h.chat.Ask(ctx, msg.ChatID, query)

	case keyboard.ActionDeterministic:
		on := h.registry.Get(msg.ChatID).ToggleDeterministic()
		h.answerCallback(ctx, msg.CallbackID, render.RenderDeterministic(on))

		edit := tgbotapi.NewEditMessageTextAndMarkup(
			msg.ChatID, msg.MessageID, render.RenderDeterministic(on), h.keyboard.DeterministicKeyboard(on),
		)
		if _, err := h.api.Request(edit); err != nil {
			ctxzap.Warn(ctx, "failed to update deterministic keyboard", zap.Error(err))
		}
		return nil

	case keyboard.ActionDownload:
		h.answerCallback(ctx, msg.CallbackID, "⏳ Preparing file...")
		return h.exporter.Export(ctx, msg.ChatID, cb.Value)

	default:
		h.answerCallback(ctx, msg.CallbackID, "❌ Unknown action")
		return fmt.Errorf("unknown callback action %q", cb.Action)
	}
}

func (h *CallbackHandler) answerCallback(ctx context.Context, callbackID, text string) {
	if callbackID == "" {
		return
	}
	if _, err := h.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}
