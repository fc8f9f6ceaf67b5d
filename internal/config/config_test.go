package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
  name: matching
  user: matching
  password: secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Matching.Overfetch != 500 {
		t.Fatalf("expected default overfetch 500, got %d", cfg.Matching.Overfetch)
	}
	if cfg.Matching.ReasonLimit != 5 {
		t.Fatalf("expected default reason limit 5, got %d", cfg.Matching.ReasonLimit)
	}
	if cfg.Matching.DefaultHideDays != 30 {
		t.Fatalf("expected default hide days 30, got %d", cfg.Matching.DefaultHideDays)
	}
	if cfg.AI.EmbedModel != "gemini-embedding-001" {
		t.Fatalf("unexpected default embed model %q", cfg.AI.EmbedModel)
	}
	if cfg.AI.EmbedTimeout != 15*time.Second {
		t.Fatalf("unexpected default embed timeout %v", cfg.AI.EmbedTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  host: localhost
`)

	t.Setenv("MATCH_SERVER_PORT", "9999")
	t.Setenv("MATCH_DB_PASSWORD", "from-env")
	t.Setenv("MATCH_GEMINI_API_KEY", "key-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Fatalf("expected env override port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Database.Password != "from-env" {
		t.Fatalf("expected env override password, got %q", cfg.Database.Password)
	}
	if cfg.AI.GeminiAPIKey != "key-from-env" {
		t.Fatalf("expected env override api key, got %q", cfg.AI.GeminiAPIKey)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "matching", User: "app", Password: "pw"}
	want := "postgres://app:pw@db:5432/matching?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Fatalf("unexpected dsn: %q", got)
	}
}
