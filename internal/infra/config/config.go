package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel       string `validate:"required"`
	Environment    string `validate:"required"`
	DatabaseURL    string // empty keeps alert state in memory
	MigrationsPath string

	TelegramToken     string
	TelegramChatID    int64   `validate:"required_with=TelegramToken"`
	TelegramRateLimit float64 `validate:"gte=0"`

	WakeSpec string `validate:"required"` // cron spec for the wake-up trigger
	WakeTag  string `validate:"required"` // fixed tag the trigger is registered under

	HourPolicy   string        `validate:"oneof=elapsed day-hour"`
	HourPeriod   time.Duration `validate:"gt=0"`
	HourLocation string

	NotifyRenotify        bool
	NotifyTagIncludesSlot bool
	IconPath              string

	AssetBaseURL string `validate:"required"`
	AssetDir     string
	AudioPlayer  string // external command used for background playback, empty disables it

	HTTPAddr                  string `validate:"required"`
	WSOrigins                 []string // extra origins allowed to open /ws
	PermissionDeniedThreshold int      `validate:"gte=1"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MigrationsPath = getEnv("MIGRATIONS_PATH", "file://migrations")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}
	cfg.TelegramRateLimit, err = strconv.ParseFloat(getEnv("TELEGRAM_RATE_LIMIT", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_RATE_LIMIT: %w", err)
	}

	cfg.WakeSpec = getEnv("WAKE_SPEC", "@every 60s") // Default: every minute
	cfg.WakeTag = getEnv("WAKE_TAG", "planetary-hour-check")

	cfg.HourPolicy = strings.ToLower(getEnv("HOUR_POLICY", "elapsed"))
	cfg.HourPeriod, err = time.ParseDuration(getEnv("HOUR_PERIOD", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOUR_PERIOD: %w", err)
	}
	cfg.HourLocation = getEnv("HOUR_LOCATION", "UTC")

	cfg.NotifyRenotify, err = strconv.ParseBool(getEnv("NOTIFY_RENOTIFY", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_RENOTIFY: %w", err)
	}
	cfg.NotifyTagIncludesSlot, err = strconv.ParseBool(getEnv("NOTIFY_TAG_INCLUDES_SLOT", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TAG_INCLUDES_SLOT: %w", err)
	}
	cfg.IconPath = getEnv("ICON_PATH", "/static/images/favicon.ico")

	cfg.AssetBaseURL = getEnv("ASSET_BASE_URL", "/static/sounds")
	cfg.AssetDir = getEnv("ASSET_DIR", "static")
	cfg.AudioPlayer = os.Getenv("AUDIO_PLAYER")

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	for _, origin := range strings.Split(os.Getenv("WS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.WSOrigins = append(cfg.WSOrigins, origin)
		}
	}
	cfg.PermissionDeniedThreshold, err = strconv.Atoi(getEnv("PERMISSION_DENIED_THRESHOLD", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid PERMISSION_DENIED_THRESHOLD: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Location resolves HourLocation.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.HourLocation)
	if err != nil {
		return nil, fmt.Errorf("invalid HOUR_LOCATION %q: %w", c.HourLocation, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
