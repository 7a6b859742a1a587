package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	IdentityStoreURL   string
	IdentityServiceKey string
	// UpgradeWebhookURL is optional; when empty, upgrade notifications are
	// silently disabled.
	UpgradeWebhookURL string
	IdentityTimeout   time.Duration
	HTTPReadTimeout   time.Duration
	HTTPWriteTimeout  time.Duration
	HTTPIdleTimeout   time.Duration
	RateLimitPerMin   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		IdentityStoreURL:   os.Getenv("IDENTITY_STORE_URL"),
		IdentityServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),
		UpgradeWebhookURL:  os.Getenv("UPGRADE_WEBHOOK_URL"),
		IdentityTimeout:    time.Second * time.Duration(getEnvInt("IDENTITY_TIMEOUT_SECONDS", 15)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IdentityStoreURL == "" {
		return nil, fmt.Errorf("IDENTITY_STORE_URL is required")
	}

	if cfg.IdentityServiceKey == "" {
		return nil, fmt.Errorf("IDENTITY_SERVICE_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
