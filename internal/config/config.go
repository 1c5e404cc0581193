// Package config layers YAML file configuration under environment variables
// for supportd. Precedence is defaults → YAML → env, with env always winning
// so existing env-only deployments keep working untouched.
//
// The file is located by the first match of:
//  1. --config CLI flag
//  2. SUPPORT_CONFIG environment variable
//  3. ~/.gfi-support/config.yaml
//  4. ./support.yaml
//
// With no file present the service runs entirely from env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML file layout. Every field also has an env var
// equivalent; see envMapping for the correspondence.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	History   HistoryConfig   `yaml:"history"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ModelConfig selects and tunes the chat model backend.
type ModelConfig struct {
	// Provider is one of: anthropic, openai, ollama, gemini.
	Provider    string          `yaml:"provider"`
	MaxTokens   int             `yaml:"max_tokens"`
	Temperature float32         `yaml:"temperature"`
	Anthropic   AnthropicConfig `yaml:"anthropic"`
	OpenAI      OpenAIConfig    `yaml:"openai"`
	Ollama      OllamaConfig    `yaml:"ollama"`
	Gemini      GeminiConfig    `yaml:"gemini"`
}

// API keys can live in the YAML file for convenience, but the env var form
// (ANTHROPIC_API_KEY etc.) is preferred so keys stay out of config files.

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// EmbeddingConfig selects the embedding backend (openai or ollama) and its
// model and vector size.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
}

// QdrantConfig is the vector store connection.
type QdrantConfig struct {
	Host string `yaml:"host"`
	// Port is the gRPC port, not the REST one.
	Port int `yaml:"port"`
	// Prefix is prepended to every collection name.
	Prefix string `yaml:"prefix"`
	APIKey string `yaml:"api_key"`
	TLS    bool   `yaml:"tls"`
}

// RetrievalConfig tunes semantic search.
type RetrievalConfig struct {
	// PerKeywordLimit is the hit count requested per keyword per collection.
	PerKeywordLimit int `yaml:"per_keyword_limit"`
	// ResultLimit caps the ranked pool returned to synthesis.
	ResultLimit int `yaml:"result_limit"`
	// MaxContextTokens bounds the grounding context sent to the model.
	MaxContextTokens int `yaml:"max_context_tokens"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// APIKey is the Bearer token required on /answer. Empty disables auth.
	APIKey    string  `yaml:"api_key"`
	RateLimit float32 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

type HistoryConfig struct {
	// DBPath is the SQLite database path; "disabled" turns history off.
	DBPath string `yaml:"db_path"`
}

type TracingConfig struct {
	PublicKey string `yaml:"public_key"`
	SecretKey string `yaml:"secret_key"`
	Host      string `yaml:"host"`
}

// binding ties one YAML field to its env var name.
type binding struct {
	env string
	val func(*Config) string
}

// envMapping is the full YAML-field-to-env-var correspondence. Load walks it
// and exports each non-zero YAML value whose env var is not already set.
var envMapping = []binding{
	{"MODEL_PROVIDER", func(c *Config) string { return c.Model.Provider }},
	{"MODEL_MAX_TOKENS", func(c *Config) string { return intStr(c.Model.MaxTokens) }},
	{"MODEL_TEMPERATURE", func(c *Config) string { return float32Str(c.Model.Temperature) }},
	{"ANTHROPIC_API_KEY", func(c *Config) string { return c.Model.Anthropic.APIKey }},
	{"ANTHROPIC_MODEL", func(c *Config) string { return c.Model.Anthropic.Model }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.Model.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *Config) string { return c.Model.OpenAI.Model }},
	{"OLLAMA_HOST", func(c *Config) string { return c.Model.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.Model.Ollama.Model }},
	{"GOOGLE_API_KEY", func(c *Config) string { return c.Model.Gemini.APIKey }},
	{"GEMINI_MODEL", func(c *Config) string { return c.Model.Gemini.Model }},
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_PREFIX", func(c *Config) string { return c.Qdrant.Prefix }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"RETRIEVAL_PER_KEYWORD_LIMIT", func(c *Config) string { return intStr(c.Retrieval.PerKeywordLimit) }},
	{"RETRIEVAL_RESULT_LIMIT", func(c *Config) string { return intStr(c.Retrieval.ResultLimit) }},
	{"ANSWER_MAX_CONTEXT_TOKENS", func(c *Config) string { return intStr(c.Retrieval.MaxContextTokens) }},
	{"SUPPORT_HOST", func(c *Config) string { return c.Server.Host }},
	{"SUPPORT_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"SUPPORT_API_KEY", func(c *Config) string { return c.Server.APIKey }},
	{"SUPPORT_RATE_LIMIT", func(c *Config) string { return float32Str(c.Server.RateLimit) }},
	{"SUPPORT_RATE_BURST", func(c *Config) string { return intStr(c.Server.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"SUPPORT_HISTORY_DB", func(c *Config) string { return c.History.DBPath }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// Load locates and parses the YAML config, then exports its values into the
// environment for the rest of the process to consume. An env var that is
// already set is never touched. Returns the path that was loaded, or "" when
// no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: parse %s: %w", path, err)
	}

	applied := cfg.export()
	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)
	return path, nil
}

// export sets env vars from envMapping, skipping zero YAML values and vars
// the environment already defines. Returns how many keys were applied.
func (c *Config) export() int {
	applied := 0
	for _, b := range envMapping {
		v := b.val(c)
		if v == "" {
			continue
		}
		if os.Getenv(b.env) != "" {
			continue
		}
		os.Setenv(b.env, v)
		applied++
	}
	return applied
}

// resolveConfigPath walks the documented search order and returns the first
// path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{os.Getenv("SUPPORT_CONFIG")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".gfi-support", "config.yaml"))
	}
	candidates = append(candidates, "support.yaml")

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// intStr renders an int for the environment; zero means "not set in YAML".
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float32Str renders a float without trailing zeros; zero means unset.
func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// boolStr renders only true; false means unset so we never mask an env var.
func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
