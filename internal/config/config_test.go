package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/hsv-vvk/internal/logger"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

const overrideConfigYAML = `
server:
  port: "8081"
source:
  timeout_sec: 5
feed:
  team: "Werder"
  calendar_name: "Werder - Vorverkauf"
  presale_time: "09:30"
  exclusions: ["Ausverkauft"]
logging:
  level: "debug"
`

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Server.Port)
	}
	if cfg.Feed.Team != "HSV" {
		t.Errorf("Team = %q, want HSV", cfg.Feed.Team)
	}
	if len(cfg.Feed.Exclusions) != 3 {
		t.Errorf("Exclusions = %v, want 3 phrases", cfg.Feed.Exclusions)
	}
	if cfg.GetFetchTimeout() != 30*time.Second {
		t.Errorf("GetFetchTimeout() = %v, want 30s", cfg.GetFetchTimeout())
	}
}

func TestLoad(t *testing.T) {
	path := createTempConfigFile(t, overrideConfigYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Server.Port)
	}
	if cfg.Feed.Team != "Werder" {
		t.Errorf("Team = %q, want Werder", cfg.Feed.Team)
	}
	if len(cfg.Feed.Exclusions) != 1 || cfg.Feed.Exclusions[0] != "Ausverkauft" {
		t.Errorf("Exclusions = %v, want [Ausverkauft]", cfg.Feed.Exclusions)
	}
	// Untouched keys keep their defaults
	if cfg.Source.URL != DefaultSourceURL {
		t.Errorf("Source.URL = %q, want default", cfg.Source.URL)
	}
	if cfg.Feed.Timezone != DefaultTimezone {
		t.Errorf("Timezone = %q, want default", cfg.Feed.Timezone)
	}
	if cfg.LogLevel() != logger.LevelDebug {
		t.Errorf("LogLevel() = %v, want DEBUG", cfg.LogLevel())
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, DefaultPort)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() on missing file should fail")
	}

	path := createTempConfigFile(t, "server: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("Load() on invalid YAML should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("SOURCE_URL", "http://localhost:9999/tickets")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Server.Port != "4000" {
		t.Errorf("Port = %q, want 4000", cfg.Server.Port)
	}
	if cfg.Source.URL != "http://localhost:9999/tickets" {
		t.Errorf("Source.URL = %q", cfg.Source.URL)
	}
	if cfg.Addr() != ":4000" {
		t.Errorf("Addr() = %q, want :4000", cfg.Addr())
	}
	if cfg.LogLevel() != logger.LevelWarn {
		t.Errorf("LogLevel() = %v, want WARN", cfg.LogLevel())
	}
}

func TestApplyEnv_Unset(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, DefaultPort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, ErrMissingPort},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }, ErrInvalidPort},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, ErrInvalidPort},
		{"request timeout", func(c *Config) { c.Server.RequestTimeoutSec = 0 }, ErrInvalidRequestTimeout},
		{"missing url", func(c *Config) { c.Source.URL = "" }, ErrMissingSourceURL},
		{"fetch timeout", func(c *Config) { c.Source.TimeoutSec = 0 }, ErrInvalidFetchTimeout},
		{"missing team", func(c *Config) { c.Feed.Team = "" }, ErrMissingTeam},
		{"bad timezone", func(c *Config) { c.Feed.Timezone = "Mars/Olympus" }, ErrInvalidTimezone},
		{"bad presale time", func(c *Config) { c.Feed.PreSaleTime = "10 Uhr" }, ErrInvalidPreSaleTime},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRules(t *testing.T) {
	path := createTempConfigFile(t, overrideConfigYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rules, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules() error = %v", err)
	}

	if rules.Team != "Werder" {
		t.Errorf("Team = %q, want Werder", rules.Team)
	}
	if rules.PreSaleHour != 9 || rules.PreSaleMinute != 30 {
		t.Errorf("pre-sale default = %02d:%02d, want 09:30", rules.PreSaleHour, rules.PreSaleMinute)
	}
	if rules.Location.String() != "Europe/Berlin" {
		t.Errorf("Location = %v, want Europe/Berlin", rules.Location)
	}
}
