package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dodgetracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey     string
	DatabaseURL    string
	ServerPort     string
	LogLevel       string
	UpdateInterval time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:     getEnv("RIOT_API_KEY", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UpdateInterval: constants.DefaultUpdateInterval,
	}

	if secs := getEnv("UPDATE_INTERVAL_SECONDS", ""); secs != "" {
		val, err := strconv.Atoi(secs)
		if err != nil || val <= 0 {
			return nil, fmt.Errorf("invalid UPDATE_INTERVAL_SECONDS: %q", secs)
		}
		cfg.UpdateInterval = time.Duration(val) * time.Second
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("update_interval", cfg.UpdateInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
