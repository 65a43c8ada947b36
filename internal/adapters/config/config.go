package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	AI            AIConfig
	Sources       SourcesConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"alpha"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AIConfig holds model access settings. An empty key is not rejected here:
// the failure surfaces from the first attempted model call instead.
type AIConfig struct {
	APIKey      string        `envconfig:"OPENAI_API_KEY"`
	BaseURL     string        `envconfig:"OPENAI_BASE_URL"`
	Model       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Temperature float64       `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
}

type SourcesConfig struct {
	HackerNewsBaseURL  string        `envconfig:"HACKERNEWS_BASE_URL" default:"https://hacker-news.firebaseio.com/v0"`
	HackerNewsTopCount int           `envconfig:"HACKERNEWS_TOP_COUNT" default:"20"`
	ProductHuntBaseURL string        `envconfig:"PRODUCTHUNT_BASE_URL" default:"https://api.producthunt.com/v2"`
	ProductHuntToken   string        `envconfig:"PRODUCT_HUNT_API_KEY"`
	CoinGeckoBaseURL   string        `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	HTTPTimeout        time.Duration `envconfig:"SOURCES_HTTP_TIMEOUT" default:"15s"`
}

type TelegramConfig struct {
	BotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	OwnerChatID int64  `envconfig:"TELEGRAM_OWNER_CHAT_ID"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables.
// A .env file is loaded first when present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
