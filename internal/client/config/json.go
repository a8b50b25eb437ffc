package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/invaders/internal/flagx"
	"github.com/dmitrijs2005/invaders/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	HealthEndpointAddr  string         `json:"health_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	LocalDBFile         string         `json:"local_db_file"`
	GeocoderBaseURL     string         `json:"geocoder_base_url"`
	LogFile             string         `json:"log_file"`
}

// parseJson overlays cfg with the file named by -c or -config. Keys missing
// from the file keep their current value. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFilePath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ServerBaseURL, jc.ServerBaseURL)
	overlay(&cfg.HealthEndpointAddr, jc.HealthEndpointAddr)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	overlay(&cfg.LocalDBFile, jc.LocalDBFile)
	overlay(&cfg.GeocoderBaseURL, jc.GeocoderBaseURL)
	overlay(&cfg.LogFile, jc.LogFile)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
