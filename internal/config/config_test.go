package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/veltio/tallypipe/internal/pipeline"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected default output format json, got %q", cfg.Output.Format)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected default log format json, got %q", cfg.Log.Format)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
output:
  format: csv
pipes:
  whitelist: /etc/tallypipe/whitelist.txt
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "csv" {
		t.Errorf("expected csv, got %q", cfg.Output.Format)
	}
	if cfg.Pipes.Whitelist != "/etc/tallypipe/whitelist.txt" {
		t.Errorf("unexpected whitelist path: %q", cfg.Pipes.Whitelist)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TALLYPIPE_OUTPUT_FORMAT", "pretty")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "pretty" {
		t.Errorf("expected env override to pretty, got %q", cfg.Output.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDefaultDescriptionParses(t *testing.T) {
	desc, err := pipeline.ParseDescription([]byte(DefaultDescription))
	if err != nil {
		t.Fatalf("built-in description must parse: %v", err)
	}
	if len(desc) == 0 {
		t.Fatal("built-in description is empty")
	}

	wl := pipeline.NewWhitelist(DefaultWhitelist...)
	for _, entry := range desc {
		if _, err := pipeline.Validate(entry.ID, wl); err != nil {
			t.Errorf("built-in description entry rejected: %v", err)
		}
	}
}

func TestDefaultWhitelistIsStructurallyValid(t *testing.T) {
	for _, id := range DefaultWhitelist {
		if _, err := pipeline.ParseStageIdentifier(id); err != nil {
			t.Errorf("built-in whitelist entry rejected: %v", err)
		}
	}
}
