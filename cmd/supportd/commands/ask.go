package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// NewAskCmd constructs the `supportd ask` command, which answers a single
// question from the command line and prints the answer with its references.
func NewAskCmd() *cobra.Command {
	var showRefs bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a support question from the command line",
		Long: `Answer a single support question against the knowledge base and print
the result to stdout. The same pipeline as POST /answer is used: keyword
extraction, semantic search across all collections, and grounded synthesis.

Examples:
  supportd ask "how do I reset my password?"
  supportd ask --references=false "which plans include SSO?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			completer, err := llm.New(ctx, llm.ConfigFromEnv())
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			store, err := buildStore(ctx)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer store.Close()

			hist, closeHistory := openHistory(log)
			defer closeHistory()

			svc, err := buildService(store, completer, hist)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			question := strings.Join(args, " ")
			ans, err := svc.Answer(ctx, question)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(ans.Text)

			if showRefs && len(ans.References) > 0 {
				fmt.Println("\nReferences:")
				for _, ref := range ans.References {
					line := fmt.Sprintf("  [%s] %s (%s, relevance %s)",
						ref.ID, ref.Title, ref.CollectionKey, ref.Relevance)
					if ref.URL != "" {
						line += " " + ref.URL
					}
					fmt.Println(line)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showRefs, "references", true, "Print the cited references after the answer")

	return cmd
}
