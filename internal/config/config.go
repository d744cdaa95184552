// Package config provides YAML configuration loading and validation for
// the SentinelLite binaries: the triage client (sentinel) and the backend
// server (sentineld).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Duration wraps time.Duration so YAML values can be written as "2s" or
// "12h"; yaml.v3 has no native parsing for duration strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"2s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ClientConfig is the configuration for the sentinel triage client.
type ClientConfig struct {
	// APIBaseURL is the root of the remote SentinelLite API, including the
	// /api prefix and without a trailing slash. Defaults to
	// "http://127.0.0.1:8080/api".
	APIBaseURL string `yaml:"api_base_url"`

	// HealthTimeout bounds the one-shot availability probe. Defaults to 2s.
	HealthTimeout Duration `yaml:"health_timeout"`

	// SessionPath is the sqlite file holding the auth token and last-known
	// user. Defaults to "sentinel-session.db".
	SessionPath string `yaml:"session_path"`

	// LatencyScale multiplies the artificial fallback latencies. 1 keeps
	// the defaults; 0 disables them. Negative values are rejected.
	LatencyScale float64 `yaml:"latency_scale"`

	// LogLevel sets the minimum log severity: "debug", "info", "warn", or
	// "error". Defaults to "info" when omitted.
	LogLevel string `yaml:"log_level"`
}

// ServerConfig is the configuration for the sentineld backend server.
type ServerConfig struct {
	// HTTPAddr is the HTTP listener address. Defaults to ":8080".
	HTTPAddr string `yaml:"http_addr"`

	// DSN is the PostgreSQL connection string. When empty the server runs
	// on the seeded in-memory store (dev mode).
	DSN string `yaml:"dsn"`

	// JWTSecret signs login tokens. Required.
	JWTSecret string `yaml:"jwt_secret"`

	// TokenTTL is the lifetime of issued tokens. Defaults to 12h.
	TokenTTL Duration `yaml:"token_ttl"`

	// SeedLogs is the number of demo log entries to seed. Defaults to 500.
	SeedLogs int `yaml:"seed_logs"`

	// LogLevel sets the minimum log severity. Defaults to "info".
	LogLevel string `yaml:"log_level"`
}

// DefaultClientConfig returns the client configuration used when no
// config file is given.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		APIBaseURL:    "http://127.0.0.1:8080/api",
		HealthTimeout: Duration(2 * time.Second),
		SessionPath:   "sentinel-session.db",
		LatencyScale:  1,
		LogLevel:      "info",
	}
}

// LoadClientConfig reads the YAML file at path, applies defaults, and
// validates all fields. It returns a typed error describing every
// validation failure encountered.
func LoadClientConfig(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://127.0.0.1:8080/api"
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = Duration(2 * time.Second)
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = "sentinel-session.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var errs []error
	if cfg.HealthTimeout < 0 {
		errs = append(errs, errors.New("health_timeout must not be negative"))
	}
	if cfg.LatencyScale < 0 {
		errs = append(errs, errors.New("latency_scale must not be negative"))
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}
	return &cfg, nil
}

// LoadServerConfig reads the YAML file at path, applies defaults, and
// validates all fields.
func LoadServerConfig(path string) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = Duration(12 * time.Hour)
	}
	if cfg.SeedLogs == 0 {
		cfg.SeedLogs = 500
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if cfg.SeedLogs < 0 {
		errs = append(errs, errors.New("seed_logs must not be negative"))
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", cfg.LogLevel))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: validation failed for %q: %w", path, err)
	}
	return &cfg, nil
}

// loadYAML reads and unmarshals one YAML file.
func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: cannot read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: cannot parse %q: %w", path, err)
	}
	return nil
}
