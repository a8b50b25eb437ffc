// Package config loads runtime configuration for the Invaders client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the server API
//	-h string   address:port of the gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-f string   local SQLite database file
//	-n string   geocoder base URL
//	-o string   log file (empty discards logs)
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "health_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "local_db_file": "invaders.db",
//	  "geocoder_base_url": "https://nominatim.openstreetmap.org",
//	  "log_file": "client.log"
//	}
package config
