package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collector summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if err := apiClient.Health(ctx); err != nil {
				return fmt.Errorf("collector unreachable: %w", err)
			}

			if getOutputFormat() != "table" {
				summary := map[string]interface{}{"healthy": true}
				if hosts, err := apiClient.Hosts().List(ctx); err == nil {
					summary["hosts"] = len(hosts)
				}
				if counts, err := apiClient.Alerts().Summary(ctx); err == nil {
					summary["alerts"] = counts
				}
				return printOutput(summary)
			}

			fmt.Println("hostwatch collector")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Println("  Health:       ok")

			hosts, err := apiClient.Hosts().List(ctx)
			if err != nil {
				fmt.Printf("  Hosts:        (error: %v)\n", err)
			} else {
				active := 0
				for _, h := range hosts {
					if h.IsActive {
						active++
					}
				}
				fmt.Printf("  Hosts:        %d active (%d total)\n", active, len(hosts))
			}

			counts, err := apiClient.Alerts().Summary(ctx)
			if err != nil {
				fmt.Printf("  Alerts:       (error: %v)\n", err)
			} else {
				fmt.Printf("  Alerts:       %d open, %d acknowledged, %d resolved\n",
					counts["open"], counts["acknowledged"], counts["resolved"])
			}

			return nil
		},
	}
}
