// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dailyforge/dailies-api/internal/errors"
)

// Storage backends
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config is the server configuration, populated from DAILIES_*
// environment variables.
type Config struct {
	Host string `env:"DAILIES_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"DAILIES_PORT" envDefault:"8080"`

	// Storage selects the character store backend.
	Storage      string `env:"DAILIES_STORAGE" envDefault:"redis"`
	RedisAddress string `env:"DAILIES_REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisTLS     bool   `env:"DAILIES_REDIS_TLS" envDefault:"false"`

	AllowedOrigins []string `env:"DAILIES_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `env:"DAILIES_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"DAILIES_LOG_FORMAT" envDefault:"json"`

	ShutdownTimeout time.Duration `env:"DAILIES_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Port <= 0 || c.Port > 65535 {
		vb.Field("port", "must be between 1 and 65535")
	}
	if c.Storage != StorageRedis && c.Storage != StorageMemory {
		vb.Field("storage", "must be redis or memory")
	}
	if c.Storage == StorageRedis && c.RedisAddress == "" {
		vb.RequiredField("redisAddress")
	}

	return vb.Build()
}
