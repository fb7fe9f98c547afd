package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfigApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
index: https://www.economist.com/weeklyedition
output: /tmp/books
limit: 5
wait:
  index: 2s
  article: 1s
timeout: 15s
cache:
  dir: .cache
  bypass: true
  clear: true
verbose: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := Defaults()
	fc.Apply(&cfg)

	if cfg.OutputDir != "/tmp/books" {
		t.Fatalf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Limit != 5 {
		t.Fatalf("Limit = %d", cfg.Limit)
	}
	if cfg.IndexWait != 2*time.Second || cfg.ArticleWait != time.Second {
		t.Fatalf("waits = %v / %v", cfg.IndexWait, cfg.ArticleWait)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.CacheDir != ".cache" || !cfg.BypassCache || !cfg.CacheClear {
		t.Fatalf("cache = %q bypass=%v clear=%v", cfg.CacheDir, cfg.BypassCache, cfg.CacheClear)
	}
	if !cfg.Verbose {
		t.Fatal("Verbose not applied")
	}
	// Untouched fields keep their defaults.
	if cfg.BaseURL != "https://www.economist.com" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestApplyEmptyFileKeepsDefaults(t *testing.T) {
	cfg := Defaults()
	want := Defaults()
	(&FileConfig{}).Apply(&cfg)
	if cfg != want {
		t.Fatalf("defaults changed: %+v", cfg)
	}
}

func TestLoadFileConfigErrors(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("limit: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Fatal("want error for malformed yaml")
	}
}
