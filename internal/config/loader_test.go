package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads all fields", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `dataset: custom/tools.json
splitDir: custom/categories
refMarker: "?ref=custom.example"
schemes:
  - "https://"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Dataset != "custom/tools.json" {
			t.Errorf("Dataset = %q, want custom/tools.json", cf.Dataset)
		}
		if cf.SplitDir == nil || *cf.SplitDir != "custom/categories" {
			t.Errorf("SplitDir = %v, want custom/categories", cf.SplitDir)
		}
		if cf.RefMarker != "?ref=custom.example" {
			t.Errorf("RefMarker = %q, want ?ref=custom.example", cf.RefMarker)
		}
		if len(cf.Schemes) != 1 || cf.Schemes[0] != "https://" {
			t.Errorf("Schemes = %v, want [https://]", cf.Schemes)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(path, []byte("dataset: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestFileApply tests merging file values onto a config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("set fields override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cf := &File{Dataset: "other/tools.json", RefMarker: "?ref=x"}
		cf.Apply(cfg)

		if len(cfg.Datasets) != 1 || cfg.Datasets[0] != "other/tools.json" {
			t.Errorf("Datasets = %v, want [other/tools.json]", cfg.Datasets)
		}
		if cfg.RefMarker != "?ref=x" {
			t.Errorf("RefMarker = %q, want ?ref=x", cfg.RefMarker)
		}
		// Unset fields keep defaults.
		if cfg.SplitDir != DefaultSplitDir {
			t.Errorf("SplitDir = %q, want default", cfg.SplitDir)
		}
	})

	t.Run("explicit empty splitDir disables split validation", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		empty := ""
		cf := &File{SplitDir: &empty}
		cf.Apply(cfg)

		if cfg.SplitDir != "" {
			t.Errorf("SplitDir = %q, want empty", cfg.SplitDir)
		}
	})
}

// TestFindConfigFile tests the config discovery order.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path wins", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "my.yaml")
		if err := os.WriteFile(path, []byte("dataset: x"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q, want the path itself", path, got)
		}
	})

	t.Run("explicit missing path yields empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
