package telegram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/telegram/bot"
	"github.com/futig/saarthi/internal/telegram/handlers"
	"github.com/futig/saarthi/internal/telegram/keyboard"
	"github.com/futig/saarthi/internal/telegram/state"
	"github.com/futig/saarthi/internal/usecase/conversation"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
	ReceiveWebhook(r *http.Request) error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	client conversation.QueryClient,
	formatters handlers.FormatterFactory,
	logger *zap.Logger,
) (Bot, error) {
	api, err := bot.NewAPI(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registry := state.NewRegistry(cfg.ConversationTTL, func() *conversation.Conversation {
		return conversation.New(client)
	})

	b := bot.New(cfg, api, api, newHandlers(cfg, api, registry, formatters, logger), logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

func newHandlers(
	cfg *config.TelegramConfig,
	api handlers.Sender,
	registry handlers.ConversationRegistry,
	formatters handlers.FormatterFactory,
	logger *zap.Logger,
) bot.Handlers {
	kb := keyboard.NewBuilder()
	exporter := handlers.NewExporter(api, registry, formatters, logger)
	chat := handlers.NewChatHandler(api, registry, &cfg.SendRetry, logger)

	return bot.Handlers{
		Chat:     chat,
		Commands: handlers.NewCommandHandler(api, registry, kb, exporter, logger),
		Callback: handlers.NewCallbackHandler(api, registry, kb, chat, exporter, logger),
	}
}
