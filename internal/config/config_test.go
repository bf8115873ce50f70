package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}
	if len(cfg.Keywords) == 0 {
		t.Error("expected keywords to be populated")
	}
	if cfg.Dedup.SimilarityThreshold != 0.7 {
		t.Errorf("expected similarity threshold 0.7, got %v", cfg.Dedup.SimilarityThreshold)
	}
	if cfg.Rank.TopN != 10 {
		t.Errorf("expected top_n 10, got %d", cfg.Rank.TopN)
	}
	if cfg.Collect.WindowHours != 48 {
		t.Errorf("expected 48h window, got %d", cfg.Collect.WindowHours)
	}
	if cfg.Rank.SourcePriority["hackernews"] != 0.95 {
		t.Errorf("expected hackernews priority 0.95, got %v", cfg.Rank.SourcePriority["hackernews"])
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
rank:
  top_n: 20
collect:
  window_hours: 24
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Rank.TopN != 20 {
		t.Errorf("expected top_n 20, got %d", cfg.Rank.TopN)
	}
	if cfg.Collect.WindowHours != 24 {
		t.Errorf("expected 24h window, got %d", cfg.Collect.WindowHours)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Rank.RecencyWeight != 0.4 {
		t.Errorf("expected default recency weight, got %v", cfg.Rank.RecencyWeight)
	}
	if cfg.Email.SMTPPort != 587 {
		t.Errorf("expected default smtp port, got %d", cfg.Email.SMTPPort)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")
	t.Setenv("EMAIL_FROM", "")
	t.Setenv("EMAIL_TO", "A@example.com, b@example.com ,")
	t.Setenv("REDDIT_CLIENT_ID", "id")
	t.Setenv("REDDIT_CLIENT_SECRET", "secret")

	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	cfg.applyEnv()

	if cfg.Email.From != "bot@example.com" {
		t.Errorf("expected From to fall back to username, got %q", cfg.Email.From)
	}
	if len(cfg.Email.Recipients) != 2 || cfg.Email.Recipients[0] != "a@example.com" {
		t.Errorf("unexpected recipients %v", cfg.Email.Recipients)
	}
	if !cfg.Sources.Reddit.IsConfigured() {
		t.Error("expected reddit to be configured")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected custom path, got %q", cfg.GetDataDir())
	}
}
