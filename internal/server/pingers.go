package server

import (
	"context"
	"fmt"

	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
)

// ModelPinger probes an LLM backend by sending a minimal single-token
// completion request. It satisfies the Pinger interface and is used by
// GET /ready. Each probe consumes a token, so readiness checks should not
// be polled aggressively.
type ModelPinger struct {
	// completer is the chat model to probe.
	completer llm.Completer
	// name identifies the backend in readiness responses (e.g. "anthropic").
	name string
}

// NewModelPinger constructs a ModelPinger for the given completer and backend name.
func NewModelPinger(c llm.Completer, name string) *ModelPinger {
	return &ModelPinger{completer: c, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *ModelPinger) Name() string { return p.name }

// Ping sends a single-token completion request to the model backend.
func (p *ModelPinger) Ping(ctx context.Context) error {
	if _, err := p.completer.Complete(ctx, "ping", 1); err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	return nil
}

// StorePinger probes the vector store backing the knowledge base.
// It satisfies the Pinger interface and is used by GET /ready.
type StorePinger struct {
	// store is the knowledge base store to probe.
	store kb.Store
}

// NewStorePinger constructs a StorePinger for the given store.
func NewStorePinger(store kb.Store) *StorePinger {
	return &StorePinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *StorePinger) Name() string { return "qdrant" }

// Ping checks the store's health endpoint.
// Returns nil if the store is reachable, or a descriptive error otherwise.
func (p *StorePinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
