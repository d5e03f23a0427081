package handlers

import (
	"context"
	"strings"

	"github.com/futig/saarthi/internal/telegram/keyboard"
	"github.com/futig/saarthi/internal/telegram/render"
	"github.com/futig/saarthi/internal/usecase/conversation"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	BaseHandler
	registry ConversationRegistry
	keyboard *keyboard.Builder
	exporter *Exporter
}

func NewCommandHandler(api Sender, registry ConversationRegistry, kb *keyboard.Builder, exporter *Exporter, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		BaseHandler: newBaseHandler(api, logger),
		registry:    registry,
		keyboard:    kb,
		exporter:    exporter,
	}
}

func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	ctxzap.Info(ctx, "command received",
		zap.String("command", msg.Command),
		zap.Int64("user_id", msg.UserID),
	)

	chatID := msg.ChatID

	switch msg.Command {
	case "start":
		h.sendMessage(chatID, render.MsgWelcome, h.keyboard.ExamplesKeyboard(conversation.ExampleQueries))

	case "help":
		h.sendMessage(chatID, render.MsgHelp, nil)

	case "deterministic":
		on := h.registry.Get(chatID).Deterministic()
		h.sendMessage(chatID, render.RenderDeterministic(on), h.keyboard.DeterministicKeyboard(on))

	case "lang":
		conv := h.registry.Get(chatID)
		code := strings.TrimSpace(msg.CommandArgs)
		if code == "" {
			h.sendMessage(chatID, render.ErrLanguageUsage, nil)
			return nil
		}
		if err := conv.SetLanguage(code); err != nil {
			h.sendMessage(chatID, render.ErrLanguageUsage, nil)
			return nil
		}
		h.sendMessage(chatID, render.RenderLanguage(conv.Language()), nil)

	case "export":
		format := strings.TrimSpace(msg.CommandArgs)
		if format == "" {
			h.sendMessage(chatID, "Choose a format:", h.keyboard.ExportKeyboard())
			return nil
		}
		return h.exporter.Export(ctx, chatID, format)

	case "reset":
		h.registry.Reset(chatID)
		h.sendMessage(chatID, render.MsgReset, nil)

	default:
		h.sendMessage(chatID, render.ErrUnknownCommand, nil)
	}

	return nil
}
