package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Whisper.Model != "base" || cfg.Whisper.Language != "en" {
		t.Errorf("whisper defaults = %+v", cfg.Whisper)
	}
	if !cfg.Pipeline.UseGPT || !cfg.Pipeline.WriteFinalVideo {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
whisper:
  model: medium
pipeline:
  use_gpt: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Whisper.Model != "medium" {
		t.Errorf("model = %q, want medium", cfg.Whisper.Model)
	}
	if cfg.Pipeline.UseGPT {
		t.Error("use_gpt should be overridden to false")
	}
	// untouched keys keep their defaults
	if cfg.Whisper.Language != "en" || cfg.Storage.Database != "lecture_insights.db" {
		t.Errorf("untouched defaults changed: %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
