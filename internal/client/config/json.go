package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/daybook/internal/flagx"
	"github.com/dmitrijs2005/daybook/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config. Pointer fields may be
// set to "" or 0 on purpose; the rest only override when non-empty.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	PageSize           int            `json:"page_size"`
	LegacyStorePath    *string        `json:"legacy_store_path"`
	Timezone           *string        `json:"timezone"`
	StreakRetryLimit   *int           `json:"streak_retry_limit"`
	RemoteTimeout      timex.Duration `json:"remote_timeout"`
	MetricsAddr        *string        `json:"metrics_addr"`
	LogLevel           string         `json:"log_level"`
}

func parseJson(cfg *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.LegacyStorePath != nil {
		cfg.LegacyStorePath = *jc.LegacyStorePath
	}
	if jc.Timezone != nil {
		cfg.Timezone = *jc.Timezone
	}
	if jc.StreakRetryLimit != nil {
		cfg.StreakRetryLimit = *jc.StreakRetryLimit
	}
	if jc.RemoteTimeout.Duration > 0 {
		cfg.RemoteTimeout = jc.RemoteTimeout.Duration
	}
	if jc.MetricsAddr != nil {
		cfg.MetricsAddr = *jc.MetricsAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
