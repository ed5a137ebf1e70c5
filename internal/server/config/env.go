package config

import "os"

// parseEnv overlays backend settings from the environment. These mirror
// the variables the web client reads, so one deployment file configures
// both sides.
//
//	ADDRESS           HTTP bind address
//	BACKEND_URL       PostgreSQL DSN
//	BACKEND_ANON_KEY  JWT signing secret
//	LOG_LEVEL         minimum log level
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("BACKEND_URL"); ok {
		config.BackendURL = v
	}
	if v, ok := os.LookupEnv("BACKEND_ANON_KEY"); ok {
		config.BackendAnonKey = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}
