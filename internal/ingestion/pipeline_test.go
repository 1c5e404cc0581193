package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
)

// captureCollection records the documents upserted into it, per batch.
type captureCollection struct {
	key     kb.CollectionKey
	batches [][]kb.Document
	err     error
}

func (c *captureCollection) Key() kb.CollectionKey { return c.key }

func (c *captureCollection) Query(_ context.Context, _ string, _ int) ([]kb.SearchHit, error) {
	return nil, errors.New("not implemented")
}

func (c *captureCollection) Upsert(_ context.Context, docs []kb.Document) error {
	if c.err != nil {
		return c.err
	}
	batch := make([]kb.Document, len(docs))
	copy(batch, docs)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureCollection) all() []kb.Document {
	var out []kb.Document
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

// captureStore is a kb.Store of captureCollections.
type captureStore struct {
	collections map[kb.CollectionKey]*captureCollection
}

func newCaptureStore() *captureStore {
	s := &captureStore{collections: make(map[kb.CollectionKey]*captureCollection)}
	for _, key := range kb.AllCollections() {
		s.collections[key] = &captureCollection{key: key}
	}
	return s
}

func (s *captureStore) Collection(key kb.CollectionKey) kb.CollectionHandle {
	return s.collections[key]
}

func (s *captureStore) Ping(_ context.Context) error { return nil }
func (s *captureStore) Close() error                 { return nil }

// writeCorpus writes a JSON corpus file into a temp dir and returns its path.
func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewPipeline_NilStore(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(nil, 0); err == nil {
		t.Fatal("expected error for nil store")
	}
}

// TestIngestFile_Articles verifies article records map to documents with
// url and label metadata, and that drafts are skipped.
func TestIngestFile_Articles(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "articles.json", `{
		"articles": [
			{"id": 42, "title": "Password Reset", "body": "Open Settings.", "html_url": "https://help.example.com/42", "label_names": ["account", "security"], "draft": false},
			{"id": 43, "title": "Unpublished", "body": "Draft content.", "draft": true},
			{"id": 44, "title": "Empty", "body": "   "}
		]
	}`)

	store := newCaptureStore()
	p, err := NewPipeline(store, 0)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	n, err := p.IngestFile(context.Background(), path, kb.CollectionArticles, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stored document (draft and empty skipped), got %d", n)
	}

	docs := store.collections[kb.CollectionArticles].all()
	if len(docs) != 1 {
		t.Fatalf("expected 1 upserted document, got %d", len(docs))
	}
	doc := docs[0]
	if doc.ID != "42" || doc.Title != "Password Reset" || doc.Body != "Open Settings." {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.CollectionKey != kb.CollectionArticles {
		t.Errorf("expected articles collection, got %q", doc.CollectionKey)
	}
	if doc.Metadata["url"] != "https://help.example.com/42" {
		t.Errorf("expected url metadata, got %q", doc.Metadata["url"])
	}
	if doc.Metadata["labels"] != "account,security" {
		t.Errorf("expected joined labels, got %q", doc.Metadata["labels"])
	}
}

// TestIngestFile_Tickets verifies ticket records use subject/description and
// that empty descriptions are skipped.
func TestIngestFile_Tickets(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "tickets.json", `{
		"tickets": [
			{"id": 1007, "subject": "Locked out after reset", "description": "Resolved by clearing cache."},
			{"id": 1008, "subject": "No description", "description": ""}
		]
	}`)

	store := newCaptureStore()
	p, err := NewPipeline(store, 0)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	n, err := p.IngestFile(context.Background(), path, kb.CollectionTickets, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stored ticket, got %d", n)
	}

	doc := store.collections[kb.CollectionTickets].all()[0]
	if doc.ID != "1007" || doc.Title != "Locked out after reset" {
		t.Errorf("unexpected ticket document: %+v", doc)
	}
	if doc.Body != "Resolved by clearing cache." {
		t.Errorf("unexpected ticket body: %q", doc.Body)
	}
}

// TestIngestFile_DraftsCollectionKeepsDrafts verifies draft records are only
// skipped outside the drafts collection.
func TestIngestFile_DraftsCollectionKeepsDrafts(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "drafts.json", `{
		"drafts": [
			{"id": 5, "title": "Upcoming Feature", "body": "Not yet published.", "draft": true}
		]
	}`)

	store := newCaptureStore()
	p, err := NewPipeline(store, 0)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	n, err := p.IngestFile(context.Background(), path, kb.CollectionDrafts, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 1 {
		t.Errorf("expected the draft record stored in the drafts collection, got %d", n)
	}
}

// TestIngestFile_DocumentsFallbackKey verifies a top-level "documents" array
// is accepted for hand-built corpora.
func TestIngestFile_DocumentsFallbackKey(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "internal.json", `{
		"documents": [
			{"id": 9, "title": "Runbook", "content": "Escalation steps."}
		]
	}`)

	store := newCaptureStore()
	p, err := NewPipeline(store, 0)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	n, err := p.IngestFile(context.Background(), path, kb.CollectionInternal, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stored document, got %d", n)
	}
	if body := store.collections[kb.CollectionInternal].all()[0].Body; body != "Escalation steps." {
		t.Errorf("expected content field as body, got %q", body)
	}
}

// TestIngestFile_Batching verifies records are upserted in batches of the
// configured size.
func TestIngestFile_Batching(t *testing.T) {
	t.Parallel()

	path := writeCorpus(t, "articles.json", `{
		"articles": [
			{"id": 1, "title": "A", "body": "a"},
			{"id": 2, "title": "B", "body": "b"},
			{"id": 3, "title": "C", "body": "c"}
		]
	}`)

	store := newCaptureStore()
	p, err := NewPipeline(store, 2)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	n, err := p.IngestFile(context.Background(), path, kb.CollectionArticles, nil)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 stored documents, got %d", n)
	}

	batches := store.collections[kb.CollectionArticles].batches
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Errorf("expected batches of 2+1, got %v", batches)
	}
}

// TestIngestFile_Errors covers the failure paths: unknown collection,
// missing file, wrong top-level key, and a failing store.
func TestIngestFile_Errors(t *testing.T) {
	t.Parallel()

	store := newCaptureStore()
	p, err := NewPipeline(store, 0)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	ctx := context.Background()

	if _, err := p.IngestFile(ctx, "x.json", "bogus", nil); err == nil {
		t.Error("expected error for unknown collection")
	}
	if _, err := p.IngestFile(ctx, "/nonexistent/x.json", kb.CollectionArticles, nil); err == nil {
		t.Error("expected error for missing file")
	}

	wrongKey := writeCorpus(t, "wrong.json", `{"posts": []}`)
	if _, err := p.IngestFile(ctx, wrongKey, kb.CollectionArticles, nil); err == nil {
		t.Error("expected error for missing corpus key")
	}

	good := writeCorpus(t, "articles.json", `{"articles": [{"id": 1, "title": "A", "body": "a"}]}`)
	store.collections[kb.CollectionArticles].err = errors.New("qdrant down")
	if _, err := p.IngestFile(ctx, good, kb.CollectionArticles, nil); err == nil {
		t.Error("expected upsert failure to surface")
	}
}
