// Package budget provides token budget estimation for prompts sent to the
// generative model. Because the service supports multiple LLM backends with
// different tokenizers, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// so the grounding context never overflows a backend's input window.
package budget

import (
	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English prose; using 3
	// would be more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input budget for a synthesis
	// prompt (instruction + grounding context + question). Conservative
	// enough for small-context models while fitting several full articles.
	DefaultMaxContextTokens = 6000

	// perHitOverhead covers the "From <collection> #<id>:" label and block
	// separators around each grounding block.
	perHitOverhead = 12
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimHits returns the longest prefix of hits whose grounding blocks fit
// within maxTokens alongside base (the fixed instruction and question text).
// Hits arrive ranked best-first, so trimming the suffix drops the least
// relevant documents. The input slice is not modified.
func TrimHits(hits []kb.SearchHit, base string, maxTokens int) []kb.SearchHit {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}

	used := Estimate(base)
	out := make([]kb.SearchHit, 0, len(hits))
	for _, hit := range hits {
		cost := perHitOverhead + Estimate(hit.Document.Body)
		if used+cost > maxTokens {
			break
		}
		used += cost
		out = append(out, hit)
	}
	return out
}
