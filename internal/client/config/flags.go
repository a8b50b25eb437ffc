package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/invaders/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Flags not
// declared here are ignored.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the server API")
	fs.StringVar(&cfg.HealthEndpointAddr, "h", cfg.HealthEndpointAddr, "address and port of the health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LocalDBFile, "f", cfg.LocalDBFile, "local database file")
	fs.StringVar(&cfg.GeocoderBaseURL, "n", cfg.GeocoderBaseURL, "geocoder base URL")
	fs.StringVar(&cfg.LogFile, "o", cfg.LogFile, "log file")

	if err := flagx.ParseOwn(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
