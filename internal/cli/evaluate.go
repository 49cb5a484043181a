package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Run an evaluation pass now",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Evaluate(context.Background())
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			fmt.Printf("Hosts checked:   %d\n", summary.HostsChecked)
			fmt.Printf("Checks run:      %d\n", summary.ChecksRun)
			fmt.Printf("Alerts opened:   %d\n", summary.AlertsOpened)
			fmt.Printf("Alerts resolved: %d\n", summary.AlertsResolved)
			if summary.Errors > 0 {
				fmt.Printf("Errors:          %d\n", summary.Errors)
			}
			return nil
		},
	}
}
