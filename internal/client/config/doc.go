// Package config loads runtime configuration for the Daybook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. DAYBOOK_CLI_* environment variables.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-p int      moments per page
//	-l string   path of the legacy local store ("" skips the import)
//	-z string   IANA timezone that defines "today" ("" is the system zone)
//	-r int      streak refresh retry limit
//	-m string   metrics listen address ("" disables /metrics)
//	-v string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "page_size": 20,
//	  "legacy_store_path": "~/.daybook/legacy.db",
//	  "timezone": "Europe/Riga",
//	  "streak_retry_limit": 5,
//	  "remote_timeout": "30s",
//	  "metrics_addr": "",
//	  "log_level": "warn"
//	}
package config
