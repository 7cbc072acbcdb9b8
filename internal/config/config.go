package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"viral-reward/internal/config/configs"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library. The
// nested structs are tagged with envPrefix so their fields are parsed with
// the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to every log record.
	Env string `env:"ENV" envDefault:"prod"`

	// StoreDriver selects the persistent store: "postgres" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// HTTP holds configuration for the HTTP server. Environment variables
	// prefixed with HTTP_ will populate this struct.
	HTTP configs.HTTP `envPrefix:"HTTP_"`

	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Psql configures the PostgreSQL connection. Environment variables
	// prefixed with PSQL_ will populate this struct.
	Psql configs.Postgres `envPrefix:"PSQL_"`

	Redis   configs.Redis   `envPrefix:"REDIS_"`
	Auth    configs.Auth    `envPrefix:"AUTH_"`
	Metrics configs.Metrics `envPrefix:"METRICS_"`
	Market  configs.Market  `envPrefix:"MARKET_"`
}

// Load reads configuration from environment variables into a Config. If
// parsing fails, an error is returned. All fields are loaded with their
// specified defaults when no environment variable is provided.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.Psql.TxMaxRetries < 0 {
		return fmt.Errorf("PSQL_TX_MAX_RETRIES must not be negative")
	}
	if c.Market.AdvertiserBonus < 0 || c.Market.ClipperBonus < 0 {
		return fmt.Errorf("registration bonuses must not be negative")
	}
	if c.Market.ListLimit <= 0 {
		return fmt.Errorf("MARKET_LIST_LIMIT must be positive")
	}
	return nil
}
