package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig selects the backend. Mode is one of "managed", "dev",
// "test" and is evaluated once at process start.
type DatabaseConfig struct {
	Mode string
	// URL is the managed backend's connection string.
	URL string
	// File is the dev backend's database file path.
	File string
}

type SessionConfig struct {
	TokenDuration time.Duration
}

type MagicLinkConfig struct {
	TTL time.Duration
	// BaseURL is used only to format the outward-facing link string.
	BaseURL string
}

type SmtpConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	JWTSecret string

	Database  DatabaseConfig
	Session   SessionConfig
	MagicLink MagicLinkConfig
	SMTP      SmtpConfig

	// CleanupInterval controls how often expired links and tokens are swept.
	CleanupInterval time.Duration
}

// LoadConfig reads .env style configuration with environment overrides.
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("DB_MODE", "dev")
	viper.SetDefault("DB_FILE", "scs-link-auth.db")
	viper.SetDefault("SESSION_TOKEN_DURATION", "168h")
	viper.SetDefault("MAGIC_LINK_TTL", "15m")
	viper.SetDefault("CLEANUP_INTERVAL", "1h")

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	mode := viper.GetString("DB_MODE")
	switch mode {
	case "managed", "dev", "test":
	default:
		return nil, fmt.Errorf("invalid DB_MODE %q (expected managed, dev or test)", mode)
	}
	if mode == "managed" && viper.GetString("DATABASE_URL") == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set when DB_MODE=managed")
	}

	return &Config{
		AppEnv:    viper.GetString("APP_ENV"),
		LogLevel:  viper.GetString("LOG_LEVEL"),
		Port:      viper.GetString("APP_PORT"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Mode: mode,
			URL:  viper.GetString("DATABASE_URL"),
			File: viper.GetString("DB_FILE"),
		},
		Session: SessionConfig{
			TokenDuration: viper.GetDuration("SESSION_TOKEN_DURATION"),
		},
		MagicLink: MagicLinkConfig{
			TTL:     viper.GetDuration("MAGIC_LINK_TTL"),
			BaseURL: viper.GetString("MAGIC_LINK_BASE_URL"),
		},
		SMTP: SmtpConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetString("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
		},
		CleanupInterval: viper.GetDuration("CLEANUP_INTERVAL"),
	}, nil
}
