package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jayati0502/gfi-ikras-project/internal/answer"
	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
	"github.com/Jayati0502/gfi-ikras-project/internal/support"
)

// handleAnswer handles POST /answer. It runs the full retrieval and
// synthesis pipeline for the question in the request body and returns the
// answer with its cited references.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.answerRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No question provided"})
		return
	}

	ans, err := s.svc.Answer(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, support.ErrEmptyQuestion) {
			s.metrics.answerRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No question provided"})
			return
		}
		log.Error("answer failed", slog.Any("error", err))
		s.metrics.answerRequestsTotal.WithLabelValues(outcomeError).Inc()
		s.metrics.answerDurationSeconds.WithLabelValues(outcomeError).Observe(time.Since(start).Seconds())
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	outcome := outcomeOK
	if ans.Degraded {
		outcome = outcomeDegraded
	}
	s.metrics.answerRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.answerDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	s.metrics.answerReferences.Observe(float64(len(ans.References)))

	writeJSON(w, http.StatusOK, answerEnvelope{
		Status: "success",
		Data: answerData{
			Question: req.Question,
			Response: responseJSON{
				Answer:     ans.Text,
				References: groupReferences(ans.References),
			},
		},
	})
}

// groupReferences splits cited sources into the article and ticket groups of
// the response envelope. Ticket hits go under tickets; article-like
// collections (articles, internal notes, drafts) go under articles.
func groupReferences(refs []answer.Reference) referencesJSON {
	// Empty slices serialise as [] rather than null.
	grouped := referencesJSON{
		Articles: []referenceJSON{},
		Tickets:  []referenceJSON{},
	}
	for _, ref := range refs {
		rj := referenceJSON{
			ID:        ref.ID,
			Title:     ref.Title,
			URL:       ref.URL,
			Relevance: ref.Relevance,
		}
		if ref.CollectionKey == kb.CollectionTickets {
			grouped.Tickets = append(grouped.Tickets, rj)
		} else {
			grouped.Articles = append(grouped.Articles, rj)
		}
	}
	return grouped
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
