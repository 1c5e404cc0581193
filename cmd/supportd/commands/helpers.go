package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Jayati0502/gfi-ikras-project/internal/answer"
	"github.com/Jayati0502/gfi-ikras-project/internal/embedder"
	"github.com/Jayati0502/gfi-ikras-project/internal/history"
	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/keywords"
	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/retriever"
	"github.com/Jayati0502/gfi-ikras-project/internal/support"
)

// buildStore connects to Qdrant using the QDRANT_* environment variables and
// ensures all knowledge base collections exist.
func buildStore(ctx context.Context) (*kb.QdrantStore, error) {
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}

	embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", "openai")
	vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

	store, err := kb.NewQdrantStore(ctx, &kb.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Prefix:     getEnvOrDefault("QDRANT_PREFIX", "support"),
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	}, emb)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	return store, nil
}

// buildService wires the full answering pipeline over the given store and
// model. The optional history recorder may be nil.
func buildService(store kb.Store, completer llm.Completer, hist history.Recorder) (*support.Service, error) {
	extractor, err := keywords.NewExtractor(completer)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword extractor: %w", err)
	}

	ret, err := retriever.New(store, &retriever.Config{
		PerKeywordLimit: getEnvInt("RETRIEVAL_PER_KEYWORD_LIMIT", 0),
		ResultLimit:     getEnvInt("RETRIEVAL_RESULT_LIMIT", 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	synth, err := answer.NewSynthesizer(completer, getEnvInt("ANSWER_MAX_CONTEXT_TOKENS", 0))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	return support.New(&support.Config{
		Extractor:   extractor,
		Retriever:   ret,
		Synthesizer: synth,
		History:     hist,
	})
}

// openHistory opens the served-answer log unless it is disabled.
// SUPPORT_HISTORY_DB overrides the default path (~/.gfi-support/answers.db);
// set to "disabled" to turn logging off. Failures disable history with a
// warning rather than aborting the command.
func openHistory(log *slog.Logger) (history.Recorder, func()) {
	dbPath := os.Getenv("SUPPORT_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via SUPPORT_HISTORY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = history.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}

	hs, err := history.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}

// getEnvOrDefault returns the env var value or fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or fallback when unset or invalid.
func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvFloat returns the env var parsed as float64, or fallback when unset
// or invalid.
func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
