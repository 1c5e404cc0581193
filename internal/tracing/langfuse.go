// Package tracing wires optional Langfuse observability into the eino
// callback chain. Tracing is opt-in: without Langfuse credentials in the
// environment the service runs exactly as before, with zero overhead.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"

	"github.com/Jayati0502/gfi-ikras-project/internal/version"
)

// defaultHost is used when LANGFUSE_HOST is unset (a local Langfuse instance).
const defaultHost = "http://localhost:3000"

// Setup builds a Langfuse callback handler from LANGFUSE_PUBLIC_KEY,
// LANGFUSE_SECRET_KEY and LANGFUSE_HOST. The returned flush function must run
// before process exit or buffered traces are lost. When credentials are
// missing it reports ok=false and the caller skips tracing entirely.
func Setup() (handler callbacks.Handler, flush func(), ok bool) {
	public := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secret := os.Getenv("LANGFUSE_SECRET_KEY")
	if public == "" || secret == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}

	handler, flush = langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: public,
		SecretKey: secret,
		Name:      "supportd",
		Release:   version.Version,
	})
	return handler, flush, true
}
