package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Jayati0502/gfi-ikras-project/internal/answer"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8704).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /ready.
	// If empty, /ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on POST /answer
	// (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on POST /answer.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry is the Prometheus registry for server metrics. If nil, a
	// fresh registry is created. Tests inject their own to stay hermetic.
	Registry *prometheus.Registry
}

// answerer is the interface handleAnswer calls to produce an answer.
// *support.Service satisfies it; tests inject a fake.
type answerer interface {
	// Answer produces a grounded answer for the given question.
	Answer(ctx context.Context, question string) (answer.Answer, error)
}

// Server is the HTTP server that exposes the question-answering service.
type Server struct {
	// svc is the question-answering service behind POST /answer.
	svc answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /ready.
	pingers []Pinger
	// metrics holds all Prometheus instruments owned by this server.
	metrics *serverMetrics
	// registry is the Prometheus registry served by GET /metrics.
	registry *prometheus.Registry
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// answerRequest is the JSON body for POST /answer.
type answerRequest struct {
	// Question is the user's natural language support question.
	Question string `json:"question"`
}

// referenceJSON is one cited source in the answer response.
type referenceJSON struct {
	// ID is the source document identifier.
	ID string `json:"id"`
	// Title is the source document title.
	Title string `json:"title"`
	// URL is the public link to the source, when one exists.
	URL string `json:"url,omitempty"`
	// Relevance is the similarity score formatted with two decimals.
	Relevance string `json:"relevance"`
}

// referencesJSON groups cited sources by origin, matching the envelope the
// existing support tooling consumes.
type referencesJSON struct {
	// Articles lists sources from the article-like collections.
	Articles []referenceJSON `json:"articles"`
	// Tickets lists sources from resolved support tickets.
	Tickets []referenceJSON `json:"tickets"`
}

// responseJSON is the answer payload inside the success envelope.
type responseJSON struct {
	// Answer is the synthesized answer text.
	Answer string `json:"answer"`
	// References lists the sources the answer drew from.
	References referencesJSON `json:"references"`
}

// answerData pairs the question with its response inside the envelope.
type answerData struct {
	// Question echoes the question that was answered.
	Question string `json:"question"`
	// Response holds the answer and its references.
	Response responseJSON `json:"response"`
}

// answerEnvelope is the JSON body returned by a successful POST /answer.
type answerEnvelope struct {
	// Status is always "success".
	Status string `json:"status"`
	// Data holds the question and its answer.
	Data answerData `json:"data"`
}

// errorEnvelope is the JSON body returned when answering fails.
type errorEnvelope struct {
	// Status is always "error".
	Status string `json:"status"`
	// Message describes the failure.
	Message string `json:"message"`
}
