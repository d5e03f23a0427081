package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/saarthi/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Backend API client configuration
	APIClientCfg APIClientConfig `envPrefix:"SAARTHI_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFile redirects logs of the terminal chat view away from the screen.
	LogFile string `env:"LOG_FILE"`

	// Admin credential persistence
	CredentialPath string `env:"CREDENTIAL_PATH"`

	// Directory ingestion configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Webhook server configuration (telegram webhook mode only)
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Environment (set from flag, not from env var)
	Environment string
}

type APIClientConfig struct {
	HTTPClientConfig
	LanguagesCacheTTL time.Duration        `env:"LANGUAGES_CACHE_TTL" envDefault:"1h"`
	HealthRetry       pkgRetry.RetryConfig `envPrefix:"HEALTH_RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Url                   string        `env:"API_URL" envDefault:"http://127.0.0.1:8000"`
	UserAgent             string        `env:"USER_AGENT" envDefault:"saarthi-client"`
	InsecureSkipVerify    bool          `env:"INSECURE_SKIP_VERIFY"`
}

// IngestConfig controls bulk and watched directory ingestion
type IngestConfig struct {
	Extensions []string      `env:"EXTENSIONS" envSeparator:"," envDefault:".pdf,.docx,.txt,.csv,.xlsx,.xls"`
	Debounce   time.Duration `env:"DEBOUNCE" envDefault:"500ms"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	WebhookURL         string               `env:"WEBHOOK_URL"`
	WebhookSecret      string               `env:"WEBHOOK_SECRET"`
	UseWebhook         bool                 `env:"USE_WEBHOOK" envDefault:"false"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	ConversationTTL    time.Duration        `env:"CONVERSATION_TTL" envDefault:"2h"`
	SendRetry          pkgRetry.RetryConfig `envPrefix:"SEND_RETRY_"`
}

func LoadConfig(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if cfg.CredentialPath == "" {
		cfg.CredentialPath = defaultCredentialPath()
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	u, err := url.Parse(cfg.APIClientCfg.Url)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("SAARTHI_API_URL must be an absolute URL, got %q", cfg.APIClientCfg.Url))
	}

	if cfg.APIClientCfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SAARTHI_TIMEOUT must be positive, got %s", cfg.APIClientCfg.RequestTimeout))
	}

	if cfg.APIClientCfg.HealthRetry.Attempts < 1 {
		errors = append(errors, "SAARTHI_HEALTH_RETRY_ATTEMPTS must be at least 1")
	}

	if len(cfg.IngestCfg.Extensions) == 0 {
		errors = append(errors, "INGEST_EXTENSIONS must list at least one extension")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ValidateTelegram checks the settings only the Telegram bot needs.
func (cfg *Config) ValidateTelegram() error {
	var errors []string
	tg := cfg.TelegramCfg

	if tg.BotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}

	if tg.UseWebhook && tg.WebhookURL == "" {
		errors = append(errors, "TELEGRAM_WEBHOOK_URL is required when TELEGRAM_USE_WEBHOOK is set")
	}

	if tg.RateLimitPerMinute < 1 || tg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", tg.RateLimitPerMinute))
	}

	if tg.RateLimitBurst < 1 || tg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", tg.RateLimitBurst))
	}

	if tg.ShutdownTimeout < 1 || tg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", tg.ShutdownTimeout))
	}

	if tg.ConversationTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("TELEGRAM_CONVERSATION_TTL must be at least 1m, got %s", tg.ConversationTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("telegram configuration errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func defaultCredentialPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".saarthi.db")
	}
	return filepath.Join(dir, "saarthi", "client.db")
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
