package llm

import (
	"context"
	"fmt"

	einogemini "github.com/cloudwego/eino-ext/components/model/gemini"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// einoCompleter adapts an Eino chat model to the Completer interface.
// The OpenAI, Ollama, and Gemini backends all go through this wrapper so a
// single Generate code path serves the non-Anthropic providers.
type einoCompleter struct {
	// chat is the underlying Eino chat model.
	chat model.ToolCallingChatModel

	// backend labels the provider in error messages.
	backend Backend
}

// newEino constructs a Completer backed by the Eino adapter for cfg.Backend.
func newEino(ctx context.Context, cfg *Config) (Completer, error) {
	chat, err := newEinoChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &einoCompleter{chat: chat, backend: cfg.Backend}, nil
}

// newEinoChatModel builds the provider-specific Eino chat model.
func newEinoChatModel(ctx context.Context, cfg *Config) (model.ToolCallingChatModel, error) {
	switch cfg.Backend {
	case BackendOpenAI:
		return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			MaxTokens:   &cfg.MaxTokens,
			Temperature: &cfg.Temperature,
		})
	case BackendOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
			BaseURL: baseURL,
			Model:   cfg.Model,
		})
	case BackendGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("llm: failed to create Gemini client: %w", err)
		}
		return einogemini.NewChatModel(ctx, &einogemini.Config{ //nolint:wrapcheck // constructor passthrough
			Client: client,
			Model:  cfg.Model,
		})
	default:
		return nil, fmt.Errorf("llm: backend %q has no Eino adapter", cfg.Backend)
	}
}

// Complete sends prompt as a single user message through the Eino chat model
// and returns the response content.
func (c *einoCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := withCallTimeout(ctx)
	defer cancel()

	opts := []model.Option{}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}

	resp, err := c.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, opts...)
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("llm: %s call failed: %w", c.backend, classify(err))
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("%w: %s returned an empty message", ErrMalformedResponse, c.backend)
	}

	return resp.Content, nil
}
