package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces environment overrides, e.g. DAYBOOK_GRPC_ADDR.
const EnvPrefix = "DAYBOOK"

// parseEnv overlays DAYBOOK_* variables. Unset variables leave fields alone.
func parseEnv(config *Config) error {
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("env config: %w", err)
	}
	return nil
}
