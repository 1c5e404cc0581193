// Package keywords reduces a free-text customer question into a short list
// of salient search terms by asking the generative model for comma-separated
// technical terms. Extraction is best-effort: any failure falls back to the
// raw question, so the retrieval pipeline always has at least one keyword.
package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// maxKeywords caps the number of terms taken from the model output. The
// retriever fans out one query per keyword per collection, so this bounds
// the fan-out width.
const maxKeywords = 5

// extractTimeout bounds the keyword extraction model call. Extraction is a
// small request; a slow model should degrade to the raw-question fallback
// rather than stall the whole answer.
const extractTimeout = 15 * time.Second

// extractMaxTokens caps the extraction response. A handful of short terms
// never needs more.
const extractMaxTokens = 100

// extractPrompt is the fixed instruction template sent to the model. The
// response contract is plain comma-separated terms with no prose, which
// parseTerms depends on.
const extractPrompt = `Extract the most important technical search terms from this customer support question.
Respond with ONLY the terms, comma-separated, in order of importance. No explanations, no numbering, at most %d terms.

Question: %s`

// Extractor derives search keywords from questions via a generative model.
type Extractor struct {
	// completer is the shared generative model client.
	completer llm.Completer
}

// NewExtractor constructs an Extractor backed by the given completer.
func NewExtractor(completer llm.Completer) (*Extractor, error) {
	if completer == nil {
		return nil, fmt.Errorf("keywords: completer must not be nil")
	}
	return &Extractor{completer: completer}, nil
}

// Extract returns 1–5 non-empty search terms for question, in model output
// order; duplicates are allowed. On any failure (transport error, timeout,
// empty or unparseable output) it returns the raw question as the sole
// keyword — extraction never fails the request.
func (e *Extractor) Extract(ctx context.Context, question string) []string {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	raw, err := e.completer.Complete(ctx, fmt.Sprintf(extractPrompt, maxKeywords, question), extractMaxTokens)
	if err != nil {
		logging.FromContext(ctx).Warn("keywords: extraction failed, falling back to raw question",
			slog.Any("error", err),
		)
		return []string{question}
	}

	terms := parseTerms(raw)
	if len(terms) == 0 {
		logging.FromContext(ctx).Warn("keywords: model returned no usable terms, falling back to raw question")
		return []string{question}
	}

	return terms
}

// parseTerms splits a comma-separated model response into trimmed, non-empty
// terms, capped at maxKeywords. Order is preserved from the model output.
func parseTerms(raw string) []string {
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		term := strings.TrimSpace(p)
		if term == "" {
			continue
		}
		terms = append(terms, term)
		if len(terms) == maxKeywords {
			break
		}
	}
	return terms
}
