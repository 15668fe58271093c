package wpmigrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseURL == "" || cfg.UserAgent == "" {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	if cfg.ExcerptLen != 300 || cfg.MinContentLen != 50 || cfg.MaxImageWidth != 1600 {
		t.Errorf("unexpected limit defaults: %+v", cfg)
	}
	if len(cfg.BlogPaths) == 0 || len(cfg.Pages) == 0 {
		t.Error("default worklists empty")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.yaml")
	data := `base_url: https://legacy.example.com
excerpt_len: 120
blog_paths:
  - 2020/05/01/enig-bericht
pages:
  - slug: leden
    path: /leden/
    parent: over-ons
    sort_order: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "https://legacy.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.ExcerptLen != 120 {
		t.Errorf("ExcerptLen = %d, want 120", cfg.ExcerptLen)
	}
	if len(cfg.BlogPaths) != 1 || cfg.BlogPaths[0] != "2020/05/01/enig-bericht" {
		t.Errorf("BlogPaths = %v", cfg.BlogPaths)
	}
	if len(cfg.Pages) != 1 || cfg.Pages[0].ParentSlug != "over-ons" {
		t.Errorf("Pages = %+v", cfg.Pages)
	}
	// Untouched fields keep their defaults.
	if cfg.MinContentLen != 50 {
		t.Errorf("MinContentLen = %d, want default", cfg.MinContentLen)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/migrate.yaml"); err == nil {
		t.Fatal("expected error")
	}
}
