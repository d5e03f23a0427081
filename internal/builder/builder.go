package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/saarthi/internal/api"
	backendapi "github.com/futig/saarthi/internal/api/backend"
	telegramapi "github.com/futig/saarthi/internal/api/telegram"
	"github.com/futig/saarthi/internal/config"
	"github.com/futig/saarthi/internal/credential"
	"github.com/futig/saarthi/internal/integration/saarthi"
	"github.com/futig/saarthi/internal/pkg/formatter"
	"github.com/futig/saarthi/internal/pkg/logger"
	"github.com/futig/saarthi/internal/pkg/validator"
	"github.com/futig/saarthi/internal/telegram"
	"github.com/futig/saarthi/internal/usecase/conversation"
	"github.com/futig/saarthi/internal/usecase/health"
	"github.com/futig/saarthi/internal/usecase/ingest"
	"go.uber.org/zap"
)

// Client bundles everything the command line front-ends need.
type Client struct {
	Config      *config.Config
	Logger      *zap.Logger
	Credentials *credential.BoltHolder
	Connector   *saarthi.Connector
	Health      *health.HealthUsecase
	Ingest      *ingest.IngestUsecase
	Formatters  *formatter.Factory
}

// NewConversation starts an empty chat against the backend.
func (c *Client) NewConversation() *conversation.Conversation {
	return conversation.New(c.Connector)
}

// Close releases the credential store and flushes the logger.
func (c *Client) Close() error {
	_ = c.Logger.Sync()
	return c.Credentials.Close()
}

// BuildClient wires the API client and its use cases. With logToFile the
// logger writes to LOG_FILE (or discards output when unset) so a full
// screen view is not disturbed.
func BuildClient(environment string, logToFile bool) (*Client, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var log *zap.Logger
	switch {
	case logToFile && cfg.LogFile == "":
		log = zap.NewNop()
	case logToFile:
		log, err = logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	default:
		log, err = logger.NewLogger(cfg.LogLevel, "")
	}
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Debug("Building client",
		zap.String("environment", cfg.Environment),
		zap.String("api_url", cfg.APIClientCfg.Url),
	)

	holder, err := credential.OpenBoltHolder(cfg.CredentialPath)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	ingestValidator := validator.NewValidator(cfg.IngestCfg)
	connector := saarthi.NewConnector(cfg.APIClientCfg, holder, ingestValidator, log)

	return &Client{
		Config:      cfg,
		Logger:      log,
		Credentials: holder,
		Connector:   connector,
		Health:      health.NewUsecase(connector, log),
		Ingest:      ingest.NewUsecase(connector, ingestValidator, cfg.IngestCfg, log),
		Formatters:  formatter.NewFactory(),
	}, nil
}

// BuildTelegramBot creates the Telegram bot and, in webhook mode, the HTTP
// server that receives its updates.
func BuildTelegramBot(environment string) (*App, error) {
	cfg, err := config.LoadConfig(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ValidateTelegram(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("api_url", cfg.APIClientCfg.Url),
		zap.Bool("webhook", cfg.TelegramCfg.UseWebhook),
	)

	// Chat users only query; the admin endpoints are never called from here.
	holder := credential.NewMemoryHolder("")
	connector := saarthi.NewConnector(cfg.APIClientCfg, holder, validator.NewValidator(cfg.IngestCfg), log)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, connector, formatter.NewFactory(), log)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	app := &App{
		bot:    bot,
		logger: log,
	}

	if cfg.TelegramCfg.UseWebhook {
		router := api.SetupRouter(
			telegramapi.NewHandler(bot, cfg.TelegramCfg.WebhookSecret),
			backendapi.NewHandler(health.NewUsecase(connector, log)),
			log,
		)

		app.server = &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		log.Info("HTTP router configured", zap.String("server_addr", cfg.ServerAddr))
	}

	log.Info("Telegram bot built successfully")

	return app, nil
}
