package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the server.
type Config struct {
	Port          int           `env:"PORT" envDefault:"8080"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"socialhub.db"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenValidity time.Duration `env:"TOKEN_VALIDITY" envDefault:"72h"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
