package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/Jayati0502/gfi-ikras-project/internal/llm"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
	"github.com/Jayati0502/gfi-ikras-project/internal/server"
	"github.com/Jayati0502/gfi-ikras-project/internal/tracing"
)

// NewServeCmd constructs the `supportd serve` command, which starts the HTTP
// server exposing the question-answering API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the support answering HTTP server",
		Long: `Start the supportd HTTP server.

The server exposes the JSON API consumed by the support tooling:

  POST /answer   answer a question with references
  GET  /health   liveness probe
  GET  /ready    readiness probe (Qdrant + model backend)
  GET  /metrics  Prometheus metrics

Examples:
  supportd serve
  supportd serve --port 9090
  MODEL_PROVIDER=openai supportd serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			modelCfg := llm.ConfigFromEnv()
			completer, err := llm.New(ctx, modelCfg)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("model initialised", slog.String("provider", string(modelCfg.Backend)))

			store, err := buildStore(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer store.Close()
			log.Info("knowledge base store ready")

			hist, closeHistory := openHistory(log)
			defer closeHistory()

			svc, err := buildService(store, completer, hist)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pingers := []server.Pinger{
				server.NewStorePinger(store),
				server.NewModelPinger(completer, string(modelCfg.Backend)),
			}

			srv, err := server.New(svc, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				APIKey:    os.Getenv("SUPPORT_API_KEY"),
				RateLimit: getEnvFloat("SUPPORT_RATE_LIMIT", 0),
				RateBurst: getEnvInt("SUPPORT_RATE_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8704, "TCP port to listen on")

	return cmd
}
