package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rumdl-go/rumdl/internal/perf"
)

func newBenchCommand() *cobra.Command {
	var perRule bool

	cmd := &cobra.Command{
		Use:    "bench",
		Short:  "Run the synthetic-corpus performance harness",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if perRule {
				content := perf.GenerateDocument(50)
				timings, err := perf.RunPerRule(ctx, content)
				if err != nil {
					return fmt.Errorf("per-rule benchmark: %w", err)
				}
				for _, t := range timings {
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-30s %12s %6d findings\n",
						t.RuleID, t.RuleName, t.Duration, t.Findings)
				}
				return nil
			}

			report, err := perf.RunScaling(ctx, perf.Sizes())
			if err != nil {
				return fmt.Errorf("scaling benchmark: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&perRule, "per-rule", false,
		"time each rule individually instead of reporting the scaling curve")

	return cmd
}
