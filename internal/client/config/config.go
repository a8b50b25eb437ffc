package config

import "time"

// Config holds runtime settings for the Invaders terminal client.
//
// Fields:
//   - ServerBaseURL: base URL of the server's JSON API.
//   - HealthEndpointAddr: host:port of the server's gRPC health service.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LocalDBFile: SQLite file holding the session and other local state. A
//     bare file name is placed under .invaders in the working directory.
//   - GeocoderBaseURL: base URL of a Nominatim-compatible geocoder.
//   - LogFile: where client logs go; empty discards them.
type Config struct {
	ServerBaseURL       string
	HealthEndpointAddr  string
	OnlineCheckInterval time.Duration
	LocalDBFile         string
	GeocoderBaseURL     string
	LogFile             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.HealthEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.LocalDBFile = "invaders.db"
	c.GeocoderBaseURL = "https://nominatim.openstreetmap.org"
	c.LogFile = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
