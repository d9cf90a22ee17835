package cli

import (
	"context"

	"github.com/spf13/cobra"

	rumdllsp "github.com/rumdl-go/rumdl/internal/lsp"
	"github.com/rumdl-go/rumdl/internal/logging"
	"github.com/rumdl-go/rumdl/pkg/config"
	_ "github.com/rumdl-go/rumdl/pkg/lint/rules" // Register built-in rules
)

func newLSPCommand() *cobra.Command {
	var flavor string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the rumdl language server on stdin/stdout",
		Long: `Start a Language Server Protocol server that communicates over
stdin/stdout. Editors launch this as a subprocess: rumdl publishes
diagnostics on every document change and answers textDocument/codeAction
requests with fix, reflow, and line-disable actions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.Default()

			cfg := config.NewConfig()
			cfg.Flavor = config.Flavor(flavor)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			server := rumdllsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, logger)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")

	return cmd
}
