package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
insight:
  base_url: http://localhost:5000
  timeout: 10s
cache:
  max_entries: 64
ledger:
  storage_key: recent_symbols
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Insight.BaseURL != "http://localhost:5000" {
		t.Fatalf("unexpected base url %q", cfg.Insight.BaseURL)
	}
	if cfg.Cache.MaxEntries != 64 {
		t.Fatalf("max entries = %d, want 64", cfg.Cache.MaxEntries)
	}
}

func TestLoadMissingBaseURL(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	if err == nil {
		t.Fatalf("expected validation error for missing insight.base_url")
	}
}

func TestLoadEventsNeedBrokers(t *testing.T) {
	body := validConfig + `
events:
  enabled: true
  topic: activity
`
	_, err := Load(writeConfig(t, body))
	if err == nil {
		t.Fatalf("expected validation error for enabled events without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("INSIGHT_BASE_URL", "http://insight:9000")
	t.Setenv("PORT", "7070")

	cfg, err := LoadWithEnv(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Insight.BaseURL != "http://insight:9000" {
		t.Fatalf("env override not applied: %q", cfg.Insight.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("port override not applied: %d", cfg.Server.Port)
	}
}
