package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Remote product/auth API
	APIBaseURL string `env:"API_BASE_URL" envDefault:"https://fakestoreapi.com"`

	// Redis-backed persisted storage
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session TTL in hours for persisted cart/wishlist/user state (default: 7 days)
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"168"`

	// Pricing policy
	FreeShippingThresholdCents int64 `env:"FREE_SHIPPING_THRESHOLD_CENTS" envDefault:"10000"`
	FlatShippingFeeCents       int64 `env:"FLAT_SHIPPING_FEE_CENTS" envDefault:"1000"`
	TaxRateBasisPoints         int64 `env:"TAX_RATE_BASIS_POINTS" envDefault:"800"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.SessionTTL < 1 {
		return fmt.Errorf("invalid session TTL: %d", c.SessionTTL)
	}
	if c.FreeShippingThresholdCents < 0 || c.FlatShippingFeeCents < 0 {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	if c.TaxRateBasisPoints < 0 || c.TaxRateBasisPoints > 10_000 {
		return fmt.Errorf("invalid tax rate basis points: %d", c.TaxRateBasisPoints)
	}
	return nil
}
