package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tramboard.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Limit != 10 {
		t.Errorf("Limit = %d, want 10", cfg.Limit)
	}
	if len(cfg.TransportTypes) != 2 || cfg.TransportTypes[0] != "TRAM" || cfg.TransportTypes[1] != "BUS" {
		t.Errorf("TransportTypes = %v, want [TRAM BUS]", cfg.TransportTypes)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
port: 9090
limit: 5
timeout: 3s
transport_types: [TRAM]
timezone: Europe/Berlin
notifications: granted
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Limit != 5 {
		t.Errorf("Limit = %d, want 5", cfg.Limit)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
	if cfg.Notifications != "granted" {
		t.Errorf("Notifications = %q, want granted", cfg.Notifications)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "limit: 5\n")
	t.Setenv("TRAMBOARD_LIMIT", "7")
	t.Setenv("TRAMBOARD_TRANSPORT_TYPES", "TRAM, UBAHN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Limit != 7 {
		t.Errorf("Limit = %d, want 7", cfg.Limit)
	}
	if len(cfg.TransportTypes) != 2 || cfg.TransportTypes[1] != "UBAHN" {
		t.Errorf("TransportTypes = %v", cfg.TransportTypes)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Load() with a missing explicit file should fail")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "limit: [[[")
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid YAML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero limit", func(c *Config) { c.Limit = 0 }},
		{"bad url", func(c *Config) { c.BaseURL = "not a url" }},
		{"no transport types", func(c *Config) { c.TransportTypes = nil }},
		{"bad notifications", func(c *Config) { c.Notifications = "always" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
