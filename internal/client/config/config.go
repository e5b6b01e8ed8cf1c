package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/models"
)

// Config holds runtime settings for the Daybook CLI.
type Config struct {
	ServerEndpointAddr string        `envconfig:"SERVER_ADDR"`
	PageSize           int           `envconfig:"PAGE_SIZE"`
	LegacyStorePath    string        `envconfig:"LEGACY_STORE"`
	Timezone           string        `envconfig:"TIMEZONE"`
	StreakRetryLimit   int           `envconfig:"STREAK_RETRY_LIMIT"`
	RemoteTimeout      time.Duration `envconfig:"REMOTE_TIMEOUT"`
	MetricsAddr        string        `envconfig:"METRICS_ADDR"`
	LogLevel           string        `envconfig:"LOG_LEVEL"`
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PageSize = 20
	c.LegacyStorePath = "daybook-legacy.db"
	c.Timezone = ""
	c.StreakRetryLimit = 5
	c.RemoteTimeout = 30 * time.Second
	c.MetricsAddr = ""
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// flags. Later sources win.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot honor.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > models.MaxPageSize {
		return fmt.Errorf("page size %d out of range 1..%d", c.PageSize, models.MaxPageSize)
	}
	return nil
}
