package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Jayati0502/gfi-ikras-project/internal/ingestion"
	"github.com/Jayati0502/gfi-ikras-project/internal/kb"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// NewIngestCmd constructs the `supportd ingest` command, which loads
// processed corpus JSON files into the Qdrant vector store.
func NewIngestCmd() *cobra.Command {
	var articles string
	var tickets string
	var internalNotes string
	var drafts string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load support corpus files into the vector store",
		Long: `Load processed support corpus JSON files into the Qdrant vector store.

Each file holds the exported records for one collection: help center
articles, resolved tickets, internal notes, or draft articles. Records are
embedded and upserted in batches; re-running ingestion with the same files
updates documents in place rather than duplicating them.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_PREFIX        Collection name prefix (default: support)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: openai, ollama (default: openai)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  supportd ingest --articles articles.json --tickets tickets.json
  supportd ingest --drafts drafts.json --batch-size 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			sources := []struct {
				path string
				key  kb.CollectionKey
			}{
				{articles, kb.CollectionArticles},
				{tickets, kb.CollectionTickets},
				{internalNotes, kb.CollectionInternal},
				{drafts, kb.CollectionDrafts},
			}

			haveSource := false
			for _, src := range sources {
				if src.path != "" {
					haveSource = true
				}
			}
			if !haveSource {
				return fmt.Errorf("ingest: provide at least one of --articles, --tickets, --internal, --drafts")
			}

			store, err := buildStore(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()
			log.Info("qdrant store ready")

			pipeline, err := ingestion.NewPipeline(store, batchSize)
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			total := 0
			for _, src := range sources {
				if src.path == "" {
					continue
				}
				n, err := pipeline.IngestFile(ctx, src.path, src.key, func(msg string) {
					log.Info(msg)
				})
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				log.Info("collection ingested",
					slog.String("collection", string(src.key)),
					slog.Int("documents", n),
				)
				total += n
			}

			log.Info("ingestion complete", slog.Int("documents", total))
			return nil
		},
	}

	cmd.Flags().StringVar(&articles, "articles", "", "Path to the help center articles JSON export")
	cmd.Flags().StringVar(&tickets, "tickets", "", "Path to the resolved tickets JSON export")
	cmd.Flags().StringVar(&internalNotes, "internal", "", "Path to the internal notes JSON export")
	cmd.Flags().StringVar(&drafts, "drafts", "", "Path to the draft articles JSON export")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Documents per embedding batch (default 25)")

	return cmd
}
