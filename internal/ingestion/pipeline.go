// Package ingestion loads processed support-corpus JSON files into the
// knowledge base. A corpus file holds an array of exported records under a
// key named after the target collection (articles, tickets, internal,
// drafts); bodies are expected to be plain text, already HTML-stripped by
// the export step. This is the producer side of the store boundary — the
// request path never writes.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
)

// defaultBatchSize is the number of documents embedded and upserted per
// store call.
const defaultBatchSize = 25

// rawDoc mirrors one record of a processed corpus export. Articles use
// title/body/html_url; tickets use subject/description; internal notes and
// drafts use either convention.
type rawDoc struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	Description string      `json:"description"`
	Content     string      `json:"content"`
	HTMLURL     string      `json:"html_url"`
	Labels      []string    `json:"label_names"`
	Draft       bool        `json:"draft"`
	UpdatedAt   string      `json:"updated_at"`
}

// title returns the record's display title regardless of export convention.
func (d rawDoc) title() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Subject
}

// body returns the record's text content regardless of export convention.
func (d rawDoc) body() string {
	if d.Body != "" {
		return d.Body
	}
	if d.Description != "" {
		return d.Description
	}
	return d.Content
}

// Pipeline loads corpus files into a kb.Store.
type Pipeline struct {
	// store receives the decoded documents.
	store kb.Store

	// batchSize is the number of documents per upsert call.
	batchSize int
}

// NewPipeline constructs a Pipeline over the given store.
func NewPipeline(store kb.Store, batchSize int) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Pipeline{store: store, batchSize: batchSize}, nil
}

// IngestFile loads one corpus file into the named collection and returns the
// number of documents stored. Draft records are skipped unless the target
// collection is drafts; records without text content are skipped. Progress
// is reported through the optional callback.
func (p *Pipeline) IngestFile(ctx context.Context, path string, key kb.CollectionKey, progress func(msg string)) (int, error) {
	if !key.Valid() {
		return 0, fmt.Errorf("ingestion: unknown collection %q", key)
	}
	if progress == nil {
		progress = func(string) {}
	}

	raws, err := decodeCorpusFile(path, key)
	if err != nil {
		return 0, err
	}
	progress(fmt.Sprintf("decoded %d records from %s", len(raws), path))

	docs := make([]kb.Document, 0, len(raws))
	for _, raw := range raws {
		if raw.Draft && key != kb.CollectionDrafts {
			continue
		}
		doc, ok := documentFromRaw(raw, key)
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}

	handle := p.store.Collection(key)
	for start := 0; start < len(docs); start += p.batchSize {
		end := min(start+p.batchSize, len(docs))
		if err := handle.Upsert(ctx, docs[start:end]); err != nil {
			return start, fmt.Errorf("ingestion: upsert batch into %q failed: %w", key, err)
		}
		progress(fmt.Sprintf("stored %d/%d documents in %s", end, len(docs), key))
	}

	return len(docs), nil
}

// decodeCorpusFile reads path and returns the record array stored under the
// collection-named key. A top-level "documents" key is accepted as a
// fallback for hand-built corpora.
func decodeCorpusFile(path string, key kb.CollectionKey) ([]rawDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read %s: %w", path, err)
	}

	var file map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ingestion: parse %s: %w", path, err)
	}

	payload, ok := file[string(key)]
	if !ok {
		payload, ok = file["documents"]
	}
	if !ok {
		return nil, fmt.Errorf("ingestion: %s has no %q or \"documents\" key", path, key)
	}

	var raws []rawDoc
	if err := json.Unmarshal(payload, &raws); err != nil {
		return nil, fmt.Errorf("ingestion: parse records in %s: %w", path, err)
	}
	return raws, nil
}

// documentFromRaw converts one export record into a kb.Document. Returns
// ok=false when the record has no usable text or no id.
func documentFromRaw(raw rawDoc, key kb.CollectionKey) (kb.Document, bool) {
	body := strings.TrimSpace(raw.body())
	id := raw.ID.String()
	if body == "" || id == "" {
		return kb.Document{}, false
	}

	metadata := map[string]string{}
	if raw.HTMLURL != "" {
		metadata["url"] = raw.HTMLURL
	}
	if len(raw.Labels) > 0 {
		metadata["labels"] = strings.Join(raw.Labels, ",")
	}
	if raw.UpdatedAt != "" {
		metadata["updated_at"] = raw.UpdatedAt
	}

	return kb.Document{
		ID:            id,
		CollectionKey: key,
		Title:         raw.title(),
		Body:          body,
		Metadata:      metadata,
	}, true
}
