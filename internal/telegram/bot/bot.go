package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/telegram/handlers"
	"github.com/futig/saarthi/internal/telegram/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Handlers groups the handlers updates are routed to
type Handlers struct {
	Chat     handlers.Handler
	Commands handlers.Handler
	Callback handlers.Handler
}

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	handlers    Handlers
	errors      *handlers.ErrorReporter
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewAPI authorizes the bot token against Telegram
func NewAPI(cfg *config.TelegramConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return api, nil
}

// New creates a new Telegram bot. api may be nil when updates are fed
// through Dispatch only.
func New(cfg *config.TelegramConfig, api *tgbotapi.BotAPI, sender handlers.Sender, h Handlers, logger *zap.Logger) *Bot {
	bot := &Bot{
		api:      api,
		cfg:      cfg,
		handlers: h,
		errors:   handlers.NewErrorReporter(sender, logger),
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, sender)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		sender,
	)

	return bot
}

// Start registers the command list and starts receiving updates: by long
// polling, or in webhook mode by registering the webhook URL and waiting
// for ReceiveWebhook calls.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot", zap.Bool("webhook", b.cfg.UseWebhook))

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commandList...)); err != nil {
		b.logger.Warn("failed to register bot commands", zap.Error(err))
	}

	if b.cfg.UseWebhook {
		params := tgbotapi.Params{}
		params["url"] = b.cfg.WebhookURL
		params.AddNonEmpty("secret_token", b.cfg.WebhookSecret)
		if _, err := b.api.MakeRequest("setWebhook", params); err != nil {
			return fmt.Errorf("set webhook: %w", err)
		}
		b.logger.Info("telegram webhook registered", zap.String("url", b.cfg.WebhookURL))
		return nil
	}

	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		if b.updatesChan != nil {
			b.api.StopReceivingUpdates()
		}
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// ReceiveWebhook decodes an update pushed by Telegram and handles it in
// the background.
func (b *Bot) ReceiveWebhook(r *http.Request) error {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	select {
	case <-b.stopChan:
		return fmt.Errorf("bot is stopping")
	default:
	}

	b.Dispatch(*update)
	return nil
}

// Dispatch handles update in its own goroutine
func (b *Bot) Dispatch(update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handleUpdateWithMiddleware(update)
	}()
}

// Wait blocks until every dispatched update has been handled
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.Dispatch(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	var (
		handler handlers.Handler
		msg     *handlers.Message
	)

	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil {
			return
		}
		handler = b.handlers.Callback
		msg = &handlers.Message{
			ChatID:       query.Message.Chat.ID,
			UserID:       query.From.ID,
			MessageID:    query.Message.MessageID,
			CallbackData: query.Data,
			CallbackID:   query.ID,
		}

	case update.Message != nil && update.Message.IsCommand():
		handler = b.handlers.Commands
		msg = &handlers.Message{
			ChatID:      update.Message.Chat.ID,
			UserID:      update.Message.From.ID,
			MessageID:   update.Message.MessageID,
			Command:     strings.ToLower(update.Message.Command()),
			CommandArgs: update.Message.CommandArguments(),
		}

	case update.Message != nil && update.Message.Text != "":
		handler = b.handlers.Chat
		msg = &handlers.Message{
			ChatID:    update.Message.Chat.ID,
			UserID:    update.Message.From.ID,
			MessageID: update.Message.MessageID,
			Text:      update.Message.Text,
		}

	default:
		return
	}

	ctx = ctxzap.ToContext(ctx, b.logger.With(
		zap.Int64("chat_id", msg.ChatID),
		zap.Int("update_id", update.UpdateID),
	))

	if err := handler.Handle(ctx, msg); err != nil {
		b.errors.HandleError(ctx, msg.ChatID, err)
	}
}

var commandList = []tgbotapi.BotCommand{
	{Command: "start", Description: "Show the welcome screen"},
	{Command: "help", Description: "List commands"},
	{Command: "deterministic", Description: "Toggle reproducible answers"},
	{Command: "lang", Description: "Set the answer language"},
	{Command: "export", Description: "Download this conversation"},
	{Command: "reset", Description: "Start a new conversation"},
}
