package kb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Embedder converts text into dense vector embeddings. The embedder package
// provides the concrete implementations (OpenAI, Ollama).
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Reserved payload keys. Everything else in a point payload is treated as
// document metadata.
const (
	payloadID    = "id"
	payloadTitle = "title"
	payloadBody  = "body"
)

// QdrantConfig holds connection parameters for a Qdrant-backed Store.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Prefix is prepended to collection keys to form the Qdrant collection
	// name, e.g. prefix "support" + key "articles" → "support_articles".
	// Defaults to "support".
	Prefix string

	// VectorSize is the dimensionality of the embeddings stored in the
	// collections. All collections share one embedding space.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements Store backed by a Qdrant instance. One gRPC client
// is shared by all collection handles.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// embedder converts query and document text into vectors.
	embedder Embedder

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a QdrantStore, ensuring every knowledge-base
// collection exists (creating missing ones), and returns a ready-to-use Store.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig, embedder Embedder) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("kb: embedder must not be nil")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "support"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("kb: failed to create qdrant client: %w", err)
	}

	s := &QdrantStore{client: client, embedder: embedder, cfg: cfg}
	for _, key := range AllCollections() {
		if err := s.ensureCollection(ctx, key); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// storageName maps a collection key to its Qdrant collection name.
func (s *QdrantStore) storageName(key CollectionKey) string {
	return s.cfg.Prefix + "_" + string(key)
}

// ensureCollection creates the Qdrant collection for key if it does not
// already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context, key CollectionKey) error {
	name := s.storageName(key)

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("kb: failed to check collection %q: %w", name, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("kb: failed to create collection %q: %w", name, err)
	}

	return nil
}

// Collection returns the handle for the given collection key.
func (s *QdrantStore) Collection(key CollectionKey) CollectionHandle {
	return &qdrantCollection{store: s, key: key}
}

// Ping calls the Qdrant HealthCheck RPC.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("kb: qdrant health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// qdrantCollection binds a QdrantStore to one collection key.
type qdrantCollection struct {
	store *QdrantStore
	key   CollectionKey
}

// Key returns the collection this handle is bound to.
func (c *qdrantCollection) Key() CollectionKey { return c.key }

// Query embeds text and runs a cosine nearest-neighbor search against this
// collection, returning up to n hits nearest first.
func (c *qdrantCollection) Query(ctx context.Context, text string, n int) ([]SearchHit, error) {
	embeddings, err := c.store.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("kb: embedding query failed: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("kb: embedder returned no vector for query")
	}

	limit := uint64(n) //nolint:gosec // n is a small positive result cap
	results, err := c.store.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.store.storageName(c.key),
		Query:          qdrant.NewQuery(embeddings[0]...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("kb: search in %q failed: %w", c.key, err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		// Qdrant reports cosine similarity in [-1,1]; the scoring formula
		// expects a cosine distance in [0,2].
		distance := 1 - r.GetScore()
		hits = append(hits, SearchHit{
			Document:  documentFromPayload(c.key, r.GetPayload()),
			Distance:  distance,
			Relevance: RelevanceFromDistance(distance),
		})
	}

	return hits, nil
}

// Upsert embeds the documents' bodies and stores them in this collection.
// Point IDs are derived deterministically from (collection, document id), so
// re-ingesting the same document replaces the previous point.
func (c *qdrantCollection) Upsert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Body
	}

	embeddings, err := c.store.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("kb: embedding documents failed: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("kb: expected %d embeddings, got %d", len(docs), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(docs))
	for i, doc := range docs {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointID(c.key, doc.ID)),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(pointPayload(doc)),
		})
	}

	_, err = c.store.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.store.storageName(c.key),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("kb: upsert into %q failed: %w", c.key, err)
	}

	return nil
}

// pointID derives a stable UUID for a document from its collection and ID.
// Qdrant point IDs must be UUIDs or integers; document IDs are arbitrary
// strings, so a name-based UUID keeps upserts idempotent.
func pointID(key CollectionKey, id string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kb://"+string(key)+"/"+id)).String()
}

// pointPayload flattens a document into a Qdrant payload map. Metadata keys
// that collide with the reserved keys are dropped.
func pointPayload(doc Document) map[string]any {
	payload := map[string]any{
		payloadID:    doc.ID,
		payloadTitle: doc.Title,
		payloadBody:  doc.Body,
	}
	for k, v := range doc.Metadata {
		if k == payloadID || k == payloadTitle || k == payloadBody {
			continue
		}
		payload[k] = v
	}
	return payload
}

// documentFromPayload rebuilds a Document from a Qdrant point payload.
func documentFromPayload(key CollectionKey, payload map[string]*qdrant.Value) Document {
	doc := Document{
		CollectionKey: key,
		Metadata:      make(map[string]string),
	}
	for k, v := range payload {
		switch k {
		case payloadID:
			doc.ID = v.GetStringValue()
		case payloadTitle:
			doc.Title = v.GetStringValue()
		case payloadBody:
			doc.Body = v.GetStringValue()
		default:
			doc.Metadata[k] = v.GetStringValue()
		}
	}
	return doc
}
