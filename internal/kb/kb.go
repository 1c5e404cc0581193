// Package kb defines the knowledge-base data model and the vector store
// boundary used by the retrieval pipeline: immutable documents partitioned
// into named collections, and per-collection nearest-neighbor search by
// text. The concrete implementation (Qdrant) satisfies these interfaces so
// the retrieval core never depends on a specific backend.
package kb

import (
	"context"
)

// CollectionKey identifies a named partition of the knowledge base.
// Document IDs are unique within a collection but not across collections.
type CollectionKey string

const (
	// CollectionArticles holds published help-center articles.
	CollectionArticles CollectionKey = "articles"
	// CollectionTickets holds resolved support tickets.
	CollectionTickets CollectionKey = "tickets"
	// CollectionInternal holds internal runbooks and notes.
	CollectionInternal CollectionKey = "internal"
	// CollectionDrafts holds unpublished article drafts.
	CollectionDrafts CollectionKey = "drafts"
)

// AllCollections returns the collection keys in their canonical enumeration
// order. The retriever fans out queries in this order, which also fixes the
// first-seen ordering used for result deduplication.
func AllCollections() []CollectionKey {
	return []CollectionKey{
		CollectionArticles,
		CollectionTickets,
		CollectionInternal,
		CollectionDrafts,
	}
}

// Valid reports whether k is one of the known collection keys.
func (k CollectionKey) Valid() bool {
	switch k {
	case CollectionArticles, CollectionTickets, CollectionInternal, CollectionDrafts:
		return true
	}
	return false
}

// Document is an immutable unit of support knowledge. Documents are created
// by ingestion and never mutated; a collection is only changed by a full
// reset and re-ingest.
type Document struct {
	// ID is unique within the document's collection (e.g. a Zendesk article ID).
	ID string

	// CollectionKey names the collection this document belongs to.
	CollectionKey CollectionKey

	// Title is the human-readable document title.
	Title string

	// Body is the plain-text content, already HTML-stripped by ingestion.
	Body string

	// Metadata holds free-form string pairs (url, labels, timestamps).
	Metadata map[string]string
}

// URL returns the document's source URL from metadata, or "" if absent.
func (d Document) URL() string {
	return d.Metadata["url"]
}

// SearchHit is an ephemeral per-query result pairing a document with its raw
// vector distance and the derived relevance score.
type SearchHit struct {
	// Document is the matched document.
	Document Document

	// Distance is the raw cosine distance reported by the store, in [0,2].
	Distance float32

	// Relevance is 1 - Distance/2, clamped to [0,1]. See RelevanceFromDistance.
	Relevance float32
}

// RelevanceFromDistance converts a raw cosine distance to a relevance score
// via 1 - d/2. The result is clamped to [0,1]: backends occasionally report
// distances fractionally outside [0,2] due to floating-point error, and an
// unclamped score would leak out of range into thresholds and API responses.
func RelevanceFromDistance(d float32) float32 {
	r := 1 - d/2
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// CollectionHandle is the per-collection query and upsert boundary.
// Implementations must be safe to call from multiple goroutines.
type CollectionHandle interface {
	// Key returns the collection this handle is bound to.
	Key() CollectionKey

	// Query embeds text and returns up to n nearest documents with their
	// distances and relevance scores, nearest first.
	Query(ctx context.Context, text string, n int) ([]SearchHit, error)

	// Upsert stores or replaces the given documents. Used by ingestion only;
	// the request path never writes.
	Upsert(ctx context.Context, docs []Document) error
}

// Store is the vector store boundary consumed by the retrieval core.
// Implementations must be safe to call from multiple goroutines.
type Store interface {
	// Collection returns the handle for the given collection key.
	Collection(key CollectionKey) CollectionHandle

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
