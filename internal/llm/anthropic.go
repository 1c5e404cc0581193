package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter implements Completer against the Anthropic Messages
// API. It is safe for concurrent use; the underlying client is stateless.
type AnthropicCompleter struct {
	// client is the shared Anthropic API client.
	client anthropic.Client

	// model is the model name sent with every request.
	model string

	// maxTokens is the response cap used when the caller passes 0.
	maxTokens int

	// temperature controls response randomness.
	temperature float32
}

// newAnthropic constructs an AnthropicCompleter from the given config.
func newAnthropic(cfg *Config) (*AnthropicCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY is required for the anthropic backend")
	}
	return &AnthropicCompleter{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	ctx, cancel := withCallTimeout(ctx)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(float64(c.temperature))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if isRateLimit(err) {
			return "", fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return "", fmt.Errorf("llm: anthropic call failed: %w", classify(err))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic response contained no text blocks", ErrMalformedResponse)
	}

	return sb.String(), nil
}

// isRateLimit reports whether err looks like a provider quota rejection.
// The SDK surfaces these as HTTP 429 API errors.
func isRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate_limit")
}
