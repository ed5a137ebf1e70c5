package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cardbook/cardbook/internal/flagx"
	"github.com/cardbook/cardbook/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr                 string         `json:"endpoint_addr"`
	BackendURL                   string         `json:"backend_url"`
	BackendAnonKey               string         `json:"backend_anon_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RecoveryCodeValidityDuration timex.Duration `json:"recovery_code_validity_duration"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	// only fields present in the file override the defaults
	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.BackendURL != "" {
		config.BackendURL = c.BackendURL
	}
	if c.BackendAnonKey != "" {
		config.BackendAnonKey = c.BackendAnonKey
	}
	if d := time.Duration(c.AccessTokenValidityDuration.Duration); d != 0 {
		config.AccessTokenValidityDuration = d
	}
	if d := time.Duration(c.RefreshTokenValidityDuration.Duration); d != 0 {
		config.RefreshTokenValidityDuration = d
	}
	if d := time.Duration(c.RecoveryCodeValidityDuration.Duration); d != 0 {
		config.RecoveryCodeValidityDuration = d
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
