package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Backend enumerates the supported generative model providers.
type Backend string

const (
	// BackendAnthropic selects the Anthropic Messages API.
	BackendAnthropic Backend = "anthropic"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which provider to use.
	Backend Backend

	// Model is the model name to use (e.g. "claude-3-5-sonnet-latest").
	Model string

	// APIKey is the authentication credential for the selected provider.
	// Unused for Ollama.
	APIKey string

	// BaseURL overrides the default API endpoint (required for Ollama).
	BaseURL string

	// MaxTokens caps the number of tokens the model may generate per
	// response when the caller passes 0 to Complete.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Validate checks that the config carries the credentials its backend needs.
// Called by New so a missing key fails at startup, not on the first request.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAnthropic, BackendOpenAI, BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm: %s backend requires an API key", c.Backend)
		}
	case BackendOllama:
		// No credential; BaseURL defaults to localhost.
	default:
		return fmt.Errorf("llm: unknown backend %q — valid values: anthropic, openai, ollama, gemini", c.Backend)
	}
	return nil
}

// ConfigFromEnv resolves a Config from environment variables.
// MODEL_PROVIDER selects the backend (default: anthropic); each provider
// uses its own native credential env vars.
//
//	Anthropic: ANTHROPIC_API_KEY, ANTHROPIC_MODEL (default: claude-3-5-sonnet-latest)
//	OpenAI:    OPENAI_API_KEY, OPENAI_MODEL (default: gpt-4o)
//	Ollama:    OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3)
//	Gemini:    GOOGLE_API_KEY, GEMINI_MODEL (default: gemini-1.5-pro)
//
//	Shared:    MODEL_MAX_TOKENS (default: 1000), MODEL_TEMPERATURE (default: 0.2)
func ConfigFromEnv() *Config {
	cfg := &Config{
		Backend:     Backend(getEnvOrDefault("MODEL_PROVIDER", string(BackendAnthropic))),
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", 1000),
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", 0.2),
	}

	switch cfg.Backend {
	case BackendOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o")
	case BackendOllama:
		cfg.BaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", "llama3")
	case BackendGemini:
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-pro")
	default:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		cfg.Model = getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-5-sonnet-latest")
	}

	return cfg
}

// New constructs a Completer from an explicit Config, delegating to the
// appropriate backend constructor.
func New(ctx context.Context, cfg *Config) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendAnthropic:
		return newAnthropic(cfg)
	case BackendOpenAI, BackendOllama, BackendGemini:
		return newEino(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", cfg.Backend)
	}
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
