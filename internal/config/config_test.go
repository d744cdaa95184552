package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadClientConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "latency_scale: 1\n")

	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:8080/api" {
		t.Errorf("api_base_url = %q", cfg.APIBaseURL)
	}
	if cfg.HealthTimeout.Std() != 2*time.Second {
		t.Errorf("health_timeout = %v", cfg.HealthTimeout)
	}
	if cfg.SessionPath != "sentinel-session.db" {
		t.Errorf("session_path = %q", cfg.SessionPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
}

func TestLoadClientConfig_ExplicitValues(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
api_base_url: https://soc.example.com/api
health_timeout: 5s
session_path: /var/lib/sentinel/session.db
latency_scale: 0
log_level: debug
`))

	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIBaseURL != "https://soc.example.com/api" || cfg.HealthTimeout.Std() != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LatencyScale != 0 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadClientConfig_Validation(t *testing.T) {
	path := writeConfig(t, "latency_scale: -1\nlog_level: loud\n")

	_, err := LoadClientConfig(path)
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	// errors.Join surfaces every failure in one error.
	msg := err.Error()
	if !strings.Contains(msg, "latency_scale") || !strings.Contains(msg, "log_level") {
		t.Errorf("error does not name both failures: %v", err)
	}
}

func TestLoadClientConfig_MissingFile(t *testing.T) {
	if _, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadServerConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "jwt_secret: super-secret\n")

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.TokenTTL.Std() != 12*time.Hour || cfg.SeedLogs != 500 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DSN != "" {
		t.Errorf("dsn should default empty (dev mode), got %q", cfg.DSN)
	}
}

func TestLoadServerConfig_RequiresSecret(t *testing.T) {
	path := writeConfig(t, "http_addr: :9090\n")

	_, err := LoadServerConfig(path)
	if err == nil || !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("err = %v, want jwt_secret requirement", err)
	}
}

func TestLoadServerConfig_Full(t *testing.T) {
	path := writeConfig(t, strings.TrimSpace(`
http_addr: ":9443"
dsn: postgres://sentinel:secret@db:5432/sentinel
jwt_secret: super-secret
token_ttl: 1h
seed_logs: 50
log_level: warn
`))

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9443" || cfg.TokenTTL.Std() != time.Hour || cfg.SeedLogs != 50 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DSN != "postgres://sentinel:secret@db:5432/sentinel" || cfg.LogLevel != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "jwt_secret: [unbalanced\n")
	if _, err := LoadServerConfig(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}
