package keyqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds executor tunables. Environment variables use the prefix
// DAYBOOK_KQ, e.g. DAYBOOK_KQ_SHARDS=8.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"64"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"2s"`

	// ErrorHandler is called after a job returns a non-nil error.
	ErrorHandler func(error) `envconfig:"-"`
}

func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("DAYBOOK_KQ", &c)
}

func (c Config) withDefaults() Config {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 2 * time.Second
	}
	return c
}
