package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BaseURL != "https://qudobeauty.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.TopN != 10 || cfg.PerCategory != 10 || cfg.MaxProducts != 40 {
		t.Errorf("limits = top_n %d, per_category %d, max_products %d", cfg.TopN, cfg.PerCategory, cfg.MaxProducts)
	}
	if cfg.Fetch.Timeout != 15*time.Second || !cfg.Fetch.RespectRobots {
		t.Errorf("fetch defaults = %+v", cfg.Fetch)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "glaze.db" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
	if cfg.Search.ResultsPerQuery != 5 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Export.BaseName != "enriched_products" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaze.yaml")
	content := `
base_url: https://other.example
top_n: 5
fetch:
  requests_per_second: 0.5
storage:
  driver: none
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://other.example" || cfg.TopN != 5 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Fetch.RequestsPerSecond != 0.5 {
		t.Errorf("nested value = %v", cfg.Fetch.RequestsPerSecond)
	}
	if cfg.Storage.Driver != "none" {
		t.Errorf("storage driver = %q", cfg.Storage.Driver)
	}
	// Unset keys keep their defaults.
	if cfg.PerCategory != 10 {
		t.Errorf("PerCategory = %d", cfg.PerCategory)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GLAZE_SEARCH_API_KEY", "env-key")
	t.Setenv("GLAZE_SEARCH_CX", "env-cx")
	t.Setenv("GLAZE_TOP_N", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.APIKey != "env-key" || cfg.Search.CX != "env-cx" {
		t.Errorf("search env not applied: %+v", cfg.Search)
	}
	if cfg.TopN != 3 {
		t.Errorf("TopN = %d", cfg.TopN)
	}
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glaze.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  driver: cassandra\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("expected error for unknown storage driver")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("top_n: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Errorf("expected error for non-positive top_n")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}
