package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jayati0502/gfi-ikras-project/internal/audit"
	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// diagnoseEnvKeys is the ordered list of env vars shown by `supportd diagnose`.
var diagnoseEnvKeys = []string{
	"MODEL_PROVIDER",
	"ANTHROPIC_API_KEY",
	"ANTHROPIC_MODEL",
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"OLLAMA_HOST",
	"OLLAMA_MODEL",
	"GOOGLE_API_KEY",
	"GEMINI_MODEL",
	"EMBEDDING_PROVIDER",
	"EMBEDDING_MODEL",
	"EMBEDDING_API_KEY",
	"QDRANT_HOST",
	"QDRANT_PORT",
	"QDRANT_PREFIX",
	"QDRANT_API_KEY",
	"SUPPORT_API_KEY",
	"SUPPORT_HISTORY_DB",
}

// NewDiagnoseCmd constructs the `supportd diagnose` command, which reports
// the resolved configuration and probes each external dependency.
func NewDiagnoseCmd() *cobra.Command {
	var checkModel bool

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report configuration and probe external dependencies",
		Long: `Print the resolved environment configuration (secrets shown as set/unset
only) and probe each external dependency: the Qdrant vector store, the
embedding backend, and optionally the chat model.

Use this to verify a deployment before pointing the support tooling at it.

Examples:
  supportd diagnose
  supportd diagnose --model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			fmt.Println("Environment:")
			for _, key := range diagnoseEnvKeys {
				fmt.Printf("  %-28s %s\n", key, audit.SanitiseKey(key, os.Getenv(key)))
			}
			fmt.Println()

			failed := false

			fmt.Print("Qdrant: ")
			store, err := buildStore(ctx)
			if err != nil {
				fmt.Printf("FAIL (%v)\n", err)
				failed = true
			} else {
				defer store.Close()
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err = store.Ping(pingCtx)
				cancel()
				if err != nil {
					fmt.Printf("FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Println("OK (collections ready)")
				}
			}

			if checkModel {
				fmt.Print("Model: ")
				modelCfg := llm.ConfigFromEnv()
				completer, err := llm.New(ctx, modelCfg)
				if err != nil {
					fmt.Printf("FAIL (%v)\n", err)
					failed = true
				} else if _, err := completer.Complete(ctx, "ping", 1); err != nil {
					fmt.Printf("FAIL (%v)\n", err)
					failed = true
				} else {
					fmt.Printf("OK (%s)\n", modelCfg.Backend)
				}
			}

			if failed {
				return fmt.Errorf("diagnose: one or more checks failed")
			}
			fmt.Println("\nAll checks passed.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkModel, "model", false, "Also probe the chat model backend (consumes a token)")

	return cmd
}
