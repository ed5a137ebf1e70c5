// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the cardbook CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - SearchDebounce: how long the search command waits for further input
//     before refetching the list.
type Config struct {
	ServerEndpointAddr string
	SearchDebounce     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.SearchDebounce = 300 * time.Millisecond
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
