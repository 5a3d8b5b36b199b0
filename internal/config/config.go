package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains the service configuration. Signing secrets are loaded
// here once at startup and injected into the token codec; nothing reads
// them from the environment at request time.
type Config struct {
	Addr        string        `env:"LAPOR_HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string        `env:"LAPOR_PG_DSN"`
	AccessTTL   time.Duration `env:"LAPOR_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL  time.Duration `env:"LAPOR_REFRESH_TTL" envDefault:"168h"`

	// Two distinct secrets: a leaked access secret must not allow
	// forging refresh tokens, and vice versa.
	AccessSecret  string `env:"LAPOR_ACCESS_SECRET"`
	RefreshSecret string `env:"LAPOR_REFRESH_SECRET"`

	AllowedOrigins []string `env:"LAPOR_CORS_ORIGINS" envSeparator:","`

	LoginRateBurst     int `env:"LAPOR_LOGIN_RATE_BURST" envDefault:"5"`
	LoginRatePerMinute int `env:"LAPOR_LOGIN_RATE_PER_MINUTE" envDefault:"10"`
}

// Load parses configuration from environment variables and fails fast
// on an invalid auth setup.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AccessSecret == "" {
		return errors.New("config: LAPOR_ACCESS_SECRET is required")
	}
	if c.RefreshSecret == "" {
		return errors.New("config: LAPOR_REFRESH_SECRET is required")
	}
	if c.AccessSecret == c.RefreshSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	return nil
}
