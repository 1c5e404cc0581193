// Package llm defines the generative text model boundary consumed by the
// keyword extractor and answer synthesizer, and the factory for selecting a
// backend implementation at runtime. Supported backends: Anthropic, OpenAI,
// Ollama, Google Gemini.
//
// The model is treated as a black box with non-deterministic output and a
// bounded per-call latency. Failures are classified into the enumerated
// sentinel errors below so callers can branch on the failure kind without
// string matching.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// defaultCallTimeout bounds a completion call when the caller's context has
// no deadline of its own. Every external model call must settle eventually.
const defaultCallTimeout = 60 * time.Second

// Completer is the interface for a single-shot text completion.
// Implementations must be safe to call from multiple goroutines.
type Completer interface {
	// Complete sends prompt to the model and returns the raw generated text.
	// maxTokens caps the response length; 0 uses the backend's configured
	// default. Returned errors wrap one of the sentinel errors in this
	// package where the failure kind is identifiable.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Enumerated failure kinds for model calls. Backend implementations wrap
// these so callers can use errors.Is instead of inspecting messages.
var (
	// ErrTimeout indicates the call exceeded its deadline.
	ErrTimeout = errors.New("llm: request timed out")

	// ErrRateLimited indicates the provider rejected the call for quota.
	ErrRateLimited = errors.New("llm: rate limited")

	// ErrMalformedResponse indicates the provider returned a response the
	// client could not interpret (empty content, unexpected shape).
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// withCallTimeout returns ctx bounded by defaultCallTimeout when it carries
// no deadline, plus the matching cancel func.
func withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultCallTimeout)
}

// classify maps a transport-level error onto the package's sentinel kinds.
// Errors that match no known kind are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
