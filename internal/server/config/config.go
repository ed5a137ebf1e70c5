// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables, and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the cardbook server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - BackendURL: PostgreSQL DSN (pgx). Empty means no backend is configured
//     and the server runs in sample mode.
//   - BackendAnonKey: HMAC secret for signing JWTs (HS256). Empty also
//     forces sample mode.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - RecoveryCodeValidityDuration: lifetime of SMS codes and email recovery links.
//   - LogLevel: minimum slog level (debug, info, warn, error).
type Config struct {
	EndpointAddr                 string
	BackendURL                   string
	BackendAnonKey               string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	RecoveryCodeValidityDuration time.Duration
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults. The backend
// settings intentionally stay empty: without both of them the server
// serves the built-in sample data set.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.BackendURL = ""
	c.BackendAnonKey = ""
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 720 * time.Hour
	c.RecoveryCodeValidityDuration = 15 * time.Minute
	c.LogLevel = "info"
}

// BackendConfigured reports whether both backend settings are present.
// When false the server runs against the sample data set and skips
// authentication.
func (c *Config) BackendConfigured() bool {
	return c.BackendURL != "" && c.BackendAnonKey != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
