package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	TokenSecret string        `env:"TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" default:"168h"` // 7 days

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"console"`
	LogOutput string `env:"LOG_OUTPUT" default:"stdout"`
	LogFile   string `env:"LOG_FILE"`

	// Real-time hub tunables. A full send buffer counts as a failed send
	// and evicts the connection.
	SendBuffer   int           `env:"WS_SEND_BUFFER" default:"256"`
	WriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT" default:"10s"`
	PongTimeout  time.Duration `env:"WS_PONG_TIMEOUT" default:"60s"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if cfg.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if len(cfg.TokenSecret) < 32 {
		return fmt.Errorf("TOKEN_SECRET must be at least 32 characters, got %d", len(cfg.TokenSecret))
	}
	if cfg.SendBuffer < 1 {
		return errors.New("WS_SEND_BUFFER must be positive")
	}
	return nil
}
