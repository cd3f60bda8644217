// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the service reads at startup. All values come
// from AUTHGATE_* environment variables.
type Config struct {
	HTTPAddr  string `env:"AUTHGATE_HTTP_ADDR" envDefault:":8080"`
	PGDSN     string `env:"AUTHGATE_PG_DSN"`
	RedisAddr string `env:"AUTHGATE_REDIS_ADDR" envDefault:"localhost:6379"`

	// TokenSecret signs bearer tokens. Required; never logged.
	TokenSecret string `env:"AUTHGATE_AUTH_SECRET"`

	// TokenTTL is the shared validity window for bearer tokens and sessions.
	TokenTTL time.Duration `env:"AUTHGATE_TOKEN_TTL" envDefault:"1h"`

	// BcryptCost tunes the password hashing work factor.
	BcryptCost int `env:"AUTHGATE_BCRYPT_COST" envDefault:"10"`

	// MigrationsDir, when set, makes the API apply pending migrations on
	// startup. Leave empty to manage the schema with cmd/migrate only.
	MigrationsDir string `env:"AUTHGATE_MIGRATIONS_DIR"`
}

// Load parses and validates configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c Config) Validate() error {
	if c.PGDSN == "" {
		return errors.New("config: AUTHGATE_PG_DSN is required")
	}
	if c.TokenSecret == "" {
		return errors.New("config: AUTHGATE_AUTH_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: AUTHGATE_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: AUTHGATE_BCRYPT_COST out of range")
	}
	return nil
}
