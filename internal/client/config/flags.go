package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/daybook/internal/flagx"
)

// parseFlags reads the short flags listed in the package doc. Other
// arguments are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-l", "-z", "-r", "-m", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "moments per page")
	fs.StringVar(&cfg.LegacyStorePath, "l", cfg.LegacyStorePath, "legacy local store path")
	fs.StringVar(&cfg.Timezone, "z", cfg.Timezone, "timezone")
	fs.IntVar(&cfg.StreakRetryLimit, "r", cfg.StreakRetryLimit, "streak refresh retry limit")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics address")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
