// Package answer assembles retrieved documents into a grounding context and
// asks the generative model for a final support answer with citations. The
// reference list is built mechanically from the retrieved hits — the
// synthesizer never infers references from the model's prose.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jayati0502/gfi-ikras-project/internal/budget"
	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// NoInformationText is the canned answer served when retrieval found nothing
// relevant. Distinct from a model failure: this is a legitimate outcome and
// no model call is made.
const NoInformationText = "I couldn't find any relevant information to answer your question. " +
	"Please contact our support team directly and they'll be happy to help."

// degradedText is served when the model call itself failed. The request
// still completes; the failure is reported in-band.
const degradedText = "I wasn't able to generate an answer right now. " +
	"Please try again in a moment or contact our support team directly."

// synthesisPrompt is the fixed instruction template. The grounding context
// and question are interpolated; the model's raw text is used verbatim as
// the answer body.
const synthesisPrompt = `You are a customer support agent. Answer the question using ONLY the knowledge base excerpts below.
Cite the reference ids you used (e.g. "see #42"). If the excerpts describe steps, list them in order. Call out any warnings or prerequisites explicitly.

Knowledge base excerpts:
%s

Question: %s`

// synthesisMaxTokens caps the generated answer length.
const synthesisMaxTokens = 1000

// Reference is one citation in an Answer, mechanically mirroring a retrieved
// hit's identity and score.
type Reference struct {
	// ID is the document id within its collection.
	ID string

	// Title is the document title.
	Title string

	// URL is the document's source URL, may be empty.
	URL string

	// CollectionKey names the collection the document came from.
	CollectionKey kb.CollectionKey

	// Relevance is the hit's relevance score formatted to two decimals.
	Relevance string
}

// Answer is the final response for one question. Constructed fresh per
// request; never persisted by this package.
type Answer struct {
	// Text is the generated (or canned) answer body.
	Text string

	// References lists the documents the answer was grounded on, in ranked
	// order. Empty for the no-information and degraded cases.
	References []Reference

	// Degraded is true when Text describes a model failure rather than an
	// answer. The HTTP boundary still serves these with status 200; the
	// flag lets callers and tests distinguish the case without string
	// matching.
	Degraded bool
}

// Synthesizer turns a ranked hit list into a final Answer via one model call.
type Synthesizer struct {
	// completer is the shared generative model client.
	completer llm.Completer

	// maxContextTokens bounds the synthesis prompt; lowest-ranked hits are
	// dropped from the grounding context to fit.
	maxContextTokens int
}

// NewSynthesizer constructs a Synthesizer backed by the given completer.
// maxContextTokens ≤ 0 selects budget.DefaultMaxContextTokens.
func NewSynthesizer(completer llm.Completer, maxContextTokens int) (*Synthesizer, error) {
	if completer == nil {
		return nil, fmt.Errorf("answer: completer must not be nil")
	}
	if maxContextTokens <= 0 {
		maxContextTokens = budget.DefaultMaxContextTokens
	}
	return &Synthesizer{completer: completer, maxContextTokens: maxContextTokens}, nil
}

// Synthesize produces the final Answer for question from the ranked hits.
// An empty hit list short-circuits to the canned no-information Answer
// without calling the model. A model failure produces a degraded Answer
// with empty references — never an error to the caller.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, hits []kb.SearchHit) Answer {
	if len(hits) == 0 {
		return Answer{Text: NoInformationText}
	}

	grounded := budget.TrimHits(hits, synthesisPrompt+question, s.maxContextTokens)
	if dropped := len(hits) - len(grounded); dropped > 0 {
		logging.FromContext(ctx).Warn("answer: dropped hits to fit context budget",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(grounded)),
		)
	}

	prompt := fmt.Sprintf(synthesisPrompt, GroundingContext(grounded), question)

	text, err := s.completer.Complete(ctx, prompt, synthesisMaxTokens)
	if err != nil {
		logging.FromContext(ctx).Error("answer: synthesis call failed",
			slog.Any("error", err),
		)
		return Answer{Text: degradedText, Degraded: true}
	}

	return Answer{Text: text, References: referencesFrom(hits)}
}

// GroundingContext concatenates the hits' bodies into labeled blocks in the
// given (ranked) order. The label ties the excerpt to the reference id the
// model is instructed to cite.
func GroundingContext(hits []kb.SearchHit) string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		blocks = append(blocks, fmt.Sprintf("From %s #%s:\n%s",
			hit.Document.CollectionKey, hit.Document.ID, hit.Document.Body))
	}
	return strings.Join(blocks, "\n")
}

// referencesFrom maps hits to References in order, formatting each relevance
// score to two decimal places.
func referencesFrom(hits []kb.SearchHit) []Reference {
	refs := make([]Reference, 0, len(hits))
	for _, hit := range hits {
		refs = append(refs, Reference{
			ID:            hit.Document.ID,
			Title:         hit.Document.Title,
			URL:           hit.Document.URL(),
			CollectionKey: hit.Document.CollectionKey,
			Relevance:     fmt.Sprintf("%.2f", hit.Relevance),
		})
	}
	return refs
}
