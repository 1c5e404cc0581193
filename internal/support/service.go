// Package support is the service facade: it orchestrates keyword extraction,
// knowledge retrieval, and answer synthesis for one question. The pipeline
// is linear — extract, search, synthesize — and every external failure along
// the way resolves into a degraded Answer rather than an error. The only
// errors the facade surfaces are caller-input validation failures.
package support

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jayati0502/gfi-ikras-project/internal/answer"
	"github.com/Jayati0502/gfi-ikras-project/internal/history"
	"github.com/Jayati0502/gfi-ikras-project/internal/keywords"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
	"github.com/Jayati0502/gfi-ikras-project/internal/retriever"
)

// ErrEmptyQuestion is returned when the caller submits a blank question.
// The HTTP boundary maps it to a 400.
var ErrEmptyQuestion = errors.New("support: question must not be empty")

// Config holds the dependencies required to construct a Service.
type Config struct {
	// Extractor derives search keywords from the question.
	Extractor *keywords.Extractor

	// Retriever runs the knowledge-base fan-out and ranking.
	Retriever *retriever.Retriever

	// Synthesizer produces the final answer from the ranked hits.
	Synthesizer *answer.Synthesizer

	// History is the optional served-answer log. May be nil.
	History history.Recorder
}

// Service answers support questions. It is immutable after construction and
// safe for concurrent use; each question is a stateless request.
type Service struct {
	extractor   *keywords.Extractor
	retriever   *retriever.Retriever
	synthesizer *answer.Synthesizer
	history     history.Recorder
}

// New constructs a Service from the provided Config.
func New(cfg *Config) (*Service, error) {
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("support: Extractor must not be nil")
	}
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("support: Retriever must not be nil")
	}
	if cfg.Synthesizer == nil {
		return nil, fmt.Errorf("support: Synthesizer must not be nil")
	}
	return &Service{
		extractor:   cfg.Extractor,
		retriever:   cfg.Retriever,
		synthesizer: cfg.Synthesizer,
		history:     cfg.History,
	}, nil
}

// Answer runs the full pipeline for question. The returned error is non-nil
// only for input validation; every downstream failure (model, vector store)
// degrades in-band per the component fallback policies.
func (s *Service) Answer(ctx context.Context, question string) (answer.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return answer.Answer{}, ErrEmptyQuestion
	}

	log := logging.FromContext(ctx)
	start := time.Now()

	log.Debug("support: extracting keywords")
	kws := s.extractor.Extract(ctx, question)
	log.Debug("support: searching knowledge base", slog.Int("keywords", len(kws)))
	hits := s.retriever.Search(ctx, kws)
	log.Debug("support: synthesizing answer", slog.Int("hits", len(hits)))
	ans := s.synthesizer.Synthesize(ctx, question, hits)

	// The synthesizer returns the model text verbatim; whitespace trimming
	// is this caller's job.
	ans.Text = strings.TrimSpace(ans.Text)

	elapsed := time.Since(start)
	log.Info("support: question answered",
		slog.Int("keywords", len(kws)),
		slog.Int("hits", len(hits)),
		slog.Int("references", len(ans.References)),
		slog.Bool("degraded", ans.Degraded),
		slog.Duration("duration", elapsed),
	)

	if s.history != nil {
		rec := history.Record{
			Question:   question,
			Answer:     ans.Text,
			References: len(ans.References),
			Degraded:   ans.Degraded,
			Duration:   elapsed,
		}
		if err := s.history.Append(ctx, rec); err != nil {
			log.Warn("support: failed to record answer history", slog.Any("error", err))
		}
	}

	return ans, nil
}
