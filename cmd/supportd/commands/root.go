// Package commands defines all Cobra CLI commands for the supportd binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Jayati0502/gfi-ikras-project/internal/audit"
	"github.com/Jayati0502/gfi-ikras-project/internal/config"
	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "supportd",
		Short: "Support knowledge assistant — grounded answers from your help center",
		Long: `supportd answers customer support questions using the team's own
knowledge base: help center articles, resolved tickets, internal notes,
and draft articles, indexed in a Qdrant vector store.

Questions are decomposed into search keywords, matched against every
collection semantically, and answered by an LLM grounded strictly in the
retrieved excerpts, with source references attached.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.gfi-support/config.yaml).
See 'supportd --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.gfi-support/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewDiagnoseCmd(),
		NewVersionCmd(),
	)

	return root
}
