package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hostwatch/hostwatch/pkg/client"
	"github.com/spf13/cobra"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Work with alerts",
	}

	cmd.AddCommand(newAlertListCmd())
	cmd.AddCommand(newAlertGetCmd())
	cmd.AddCommand(newAlertAckCmd())
	cmd.AddCommand(newAlertSummaryCmd())

	return cmd
}

func newAlertListCmd() *cobra.Command {
	var hostID int64
	var status, severity string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := apiClient.Alerts().List(context.Background(), &client.AlertListOptions{
				HostID:   hostID,
				Status:   status,
				Severity: severity,
				Limit:    limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list alerts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(alerts)
			}

			t := NewTable("ID", "HOST", "SEVERITY", "STATUS", "TRIGGERED", "MESSAGE")
			for _, a := range alerts {
				t.AddRow(
					strconv.FormatInt(a.ID, 10),
					strconv.FormatInt(a.HostID, 10),
					formatSeverity(a.Severity),
					formatStatus(a.Status),
					formatTime(a.TriggeredAt),
					truncate(a.Message, 60),
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().Int64Var(&hostID, "host", 0, "filter by host ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (open, acknowledged, resolved)")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (L1, L2, L3)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum alerts to return")

	return cmd
}

func newAlertGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get alert details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alert ID: %s", args[0])
			}

			a, err := apiClient.Alerts().Get(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get alert: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(a)
			}

			fmt.Printf("ID:        %d\n", a.ID)
			fmt.Printf("Host:      %d\n", a.HostID)
			fmt.Printf("Check:     %d\n", a.CheckID)
			fmt.Printf("Severity:  %s\n", a.Severity)
			fmt.Printf("Status:    %s\n", a.Status)
			fmt.Printf("Triggered: %s\n", formatTime(a.TriggeredAt))
			fmt.Printf("Message:   %s\n", a.Message)
			return nil
		},
	}
}

func newAlertAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge an open alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid alert ID: %s", args[0])
			}

			if err := apiClient.Alerts().Acknowledge(context.Background(), id); err != nil {
				return fmt.Errorf("failed to acknowledge alert: %w", err)
			}

			fmt.Printf("Alert %d acknowledged\n", id)
			return nil
		},
	}
}

func newAlertSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show alert counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := apiClient.Alerts().Summary(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get summary: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(counts)
			}

			t := NewTable("STATUS", "COUNT")
			for _, status := range []string{"open", "acknowledged", "resolved"} {
				t.AddRow(formatStatus(status), strconv.Itoa(counts[status]))
			}
			t.Render()
			return nil
		},
	}
}
