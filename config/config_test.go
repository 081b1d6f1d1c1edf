package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }},
		{"unknown fetcher", func(c *Config) { c.Fetcher = "curl" }},
		{"unknown format", func(c *Config) { c.OutputFormat = "xml" }},
		{"inverted nightly bounds", func(c *Config) { c.Prices.NightlyMax = 10 }},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true }},
		{"negative delay", func(c *Config) { c.CityDelay = -time.Second }},
	}

	for _, tt := range tests {
		c := DefaultConfig()
		tt.mutate(c)
		err := c.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Validate() = %v; want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analyzer.yaml")
	yml := "max_concurrency: 2\ncity_delay: 1s\noutput_format: csv\nprices:\n  nightly_min: 40\n  nightly_max: 500\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTPUT_PATH", filepath.Join(dir, "out.json"))
	t.Setenv("MAX_CONCURRENCY", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency: got %d, want 3 (env wins over file)", cfg.MaxConcurrency)
	}
	if cfg.CityDelay != time.Second {
		t.Errorf("CityDelay: got %v, want 1s", cfg.CityDelay)
	}
	if cfg.OutputFormat != "csv" {
		t.Errorf("OutputFormat: got %q, want csv", cfg.OutputFormat)
	}
	if cfg.Prices.NightlyMin != 40 || cfg.Prices.NightlyMax != 500 {
		t.Errorf("nightly bounds: got %v-%v, want 40-500", cfg.Prices.NightlyMin, cfg.Prices.NightlyMax)
	}
	if cfg.Prices.MonthlyMin != 800 {
		t.Errorf("MonthlyMin should keep its default, got %v", cfg.Prices.MonthlyMin)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidFromEnv(t *testing.T) {
	t.Setenv("FETCHER", "lynx")
	_, err := Load("")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() = %v; want ErrInvalidConfig", err)
	}
}
