// Package retriever implements the retrieval-and-ranking core: a per-keyword,
// per-collection nearest-neighbor fan-out followed by threshold filtering,
// cross-keyword deduplication, relevance ordering, and top-k truncation.
// The output feeds the answer synthesizer's grounding context.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

const (
	// DefaultPerKeywordLimit is the number of hits requested from each
	// (keyword, collection) query.
	DefaultPerKeywordLimit = 3

	// DefaultResultLimit is the length cap of the final ranked result.
	DefaultResultLimit = 5

	// relevanceThreshold is the fixed cut-off: hits scoring at or below it
	// are too dissimilar to the keyword to be worth surfacing.
	relevanceThreshold = 0.3

	// defaultQueryTimeout bounds each individual nearest-neighbor query.
	// A timed-out query contributes no hits; it is not retried.
	defaultQueryTimeout = 10 * time.Second

	// defaultConcurrency is the fan-out worker pool size. The queries are
	// independent, so any ordering of execution yields identical output.
	defaultConcurrency = 4
)

// Config holds the tunable parameters of a Retriever. Zero values select
// the defaults above.
type Config struct {
	// Collections is the ordered list of collections to query. Defaults to
	// kb.AllCollections. The order fixes first-seen deduplication.
	Collections []kb.CollectionKey

	// PerKeywordLimit is the number of hits requested per query.
	PerKeywordLimit int

	// ResultLimit caps the final ranked result length.
	ResultLimit int

	// QueryTimeout bounds each individual query.
	QueryTimeout time.Duration

	// Concurrency is the fan-out worker pool size.
	Concurrency int
}

// Retriever issues the query fan-out against a kb.Store and ranks the merged
// results. It is immutable after construction and safe for concurrent use.
type Retriever struct {
	store           kb.Store
	collections     []kb.CollectionKey
	perKeywordLimit int
	resultLimit     int
	queryTimeout    time.Duration
	concurrency     int
}

// New constructs a Retriever over the given store.
func New(store kb.Store, cfg *Config) (*Retriever, error) {
	if store == nil {
		return nil, fmt.Errorf("retriever: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Retriever{
		store:           store,
		collections:     cfg.Collections,
		perKeywordLimit: cfg.PerKeywordLimit,
		resultLimit:     cfg.ResultLimit,
		queryTimeout:    cfg.QueryTimeout,
		concurrency:     cfg.Concurrency,
	}
	if len(r.collections) == 0 {
		r.collections = kb.AllCollections()
	}
	if r.perKeywordLimit <= 0 {
		r.perKeywordLimit = DefaultPerKeywordLimit
	}
	if r.resultLimit <= 0 {
		r.resultLimit = DefaultResultLimit
	}
	if r.queryTimeout <= 0 {
		r.queryTimeout = defaultQueryTimeout
	}
	if r.concurrency <= 0 {
		r.concurrency = defaultConcurrency
	}

	return r, nil
}

// pair is one (keyword, collection) unit of the fan-out.
type pair struct {
	keyword    string
	collection kb.CollectionKey
}

// Search runs the full fan-out for keywords and returns the deduplicated,
// relevance-sorted, length-capped result. An empty result is the legitimate
// "no relevant knowledge" outcome, not an error: per-pair query failures and
// timeouts are logged, contribute no hits, and never abort the remaining
// queries.
//
// Deduplication is by (collection, document id); the first copy in
// (keyword, collection) enumeration order wins, even when a later duplicate
// scored higher. Keeping the first occurrence makes repeated searches
// byte-stable against an unchanged store regardless of which keyword
// surfaced the document.
func (r *Retriever) Search(ctx context.Context, keywords []string) []kb.SearchHit {
	pairs := make([]pair, 0, len(keywords)*len(r.collections))
	for _, kw := range keywords {
		for _, coll := range r.collections {
			pairs = append(pairs, pair{keyword: kw, collection: coll})
		}
	}

	// Each worker writes only its own slot, so the merge below sees results
	// in enumeration order no matter how the queries interleave.
	buckets := make([][]kb.SearchHit, len(pairs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				buckets[i] = r.queryPair(ctx, pairs[i])
			}
		}()
	}
	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Merge, dedup first-seen, rank, truncate.
	seen := make(map[string]struct{})
	pool := make([]kb.SearchHit, 0, len(pairs)*r.perKeywordLimit)
	for _, bucket := range buckets {
		for _, hit := range bucket {
			key := string(hit.Document.CollectionKey) + "\x00" + hit.Document.ID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pool = append(pool, hit)
		}
	}

	// Stable sort preserves pool insertion order among equal scores.
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Relevance > pool[j].Relevance
	})

	if len(pool) > r.resultLimit {
		pool = pool[:r.resultLimit]
	}
	return pool
}

// queryPair runs one nearest-neighbor query and applies the relevance
// threshold. Failures are swallowed: the pair simply contributes no hits.
func (r *Retriever) queryPair(ctx context.Context, p pair) []kb.SearchHit {
	qctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	hits, err := r.store.Collection(p.collection).Query(qctx, p.keyword, r.perKeywordLimit)
	if err != nil {
		logging.FromContext(ctx).Warn("retriever: query failed, dropping pair",
			slog.String("collection", string(p.collection)),
			slog.String("keyword", p.keyword),
			slog.Any("error", err),
		)
		return nil
	}

	kept := hits[:0]
	for _, hit := range hits {
		if hit.Relevance > relevanceThreshold {
			kept = append(kept, hit)
		}
	}
	return kept
}
