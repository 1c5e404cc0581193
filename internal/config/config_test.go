package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: anthropic
  max_tokens: 2000
  temperature: 0.3
  anthropic:
    model: claude-3-5-sonnet-latest
embedding:
  provider: ollama
  model: nomic-embed-text
qdrant:
  host: qdrant.internal
  port: 6334
  prefix: support
retrieval:
  per_keyword_limit: 4
  result_limit: 8
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"ANTHROPIC_MODEL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL",
		"QDRANT_HOST", "QDRANT_PORT", "QDRANT_PREFIX",
		"RETRIEVAL_PER_KEYWORD_LIMIT", "RETRIEVAL_RESULT_LIMIT",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":              "anthropic",
		"MODEL_MAX_TOKENS":            "2000",
		"ANTHROPIC_MODEL":             "claude-3-5-sonnet-latest",
		"EMBEDDING_PROVIDER":          "ollama",
		"EMBEDDING_MODEL":             "nomic-embed-text",
		"QDRANT_HOST":                 "qdrant.internal",
		"QDRANT_PORT":                 "6334",
		"QDRANT_PREFIX":               "support",
		"RETRIEVAL_PER_KEYWORD_LIMIT": "4",
		"RETRIEVAL_RESULT_LIMIT":      "8",
		"LOG_LEVEL":                   "debug",
		"LOG_FORMAT":                  "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: anthropic
qdrant:
  host: yaml-host
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Env var already set — YAML must not override it.
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("QDRANT_HOST", "env-host")

	if _, err := Load(cfgPath, slog.Default()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "openai" {
		t.Errorf("MODEL_PROVIDER: env should win, got %q", got)
	}
	if got := os.Getenv("QDRANT_HOST"); got != "env-host" {
		t.Errorf("QDRANT_HOST: env should win, got %q", got)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("model: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(cfgPath, slog.Default()); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float32
		want string
	}{
		{0, ""},
		{0.2, "0.2"},
		{0.25, "0.25"},
		{1, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
