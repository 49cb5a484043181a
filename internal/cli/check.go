package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hostwatch/hostwatch/pkg/client"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Manage check configuration",
	}

	cmd.AddCommand(newCheckListCmd())
	cmd.AddCommand(newCheckBindingsCmd())
	cmd.AddCommand(newCheckBindCmd())
	cmd.AddCommand(newCheckUnbindCmd())

	return cmd
}

func newCheckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the check catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := apiClient.Checks().ListKinds(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list checks: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(kinds)
			}

			t := NewTable("ID", "KEY", "NAME", "SEVERITY", "ENABLED", "DEFAULT PARAMS")
			for _, k := range kinds {
				enabled := "yes"
				if !k.Enabled {
					enabled = "no"
				}
				t.AddRow(
					strconv.FormatInt(k.ID, 10),
					k.Key,
					k.Name,
					formatSeverity(k.Severity),
					enabled,
					truncate(string(k.DefaultParams), 40),
				)
			}
			t.Render()
			return nil
		},
	}
}

func newCheckBindingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bindings <host-id>",
		Short: "List a host's check bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			bindings, err := apiClient.Checks().ListBindings(context.Background(), hostID)
			if err != nil {
				return fmt.Errorf("failed to list bindings: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(bindings)
			}

			t := NewTable("CHECK ID", "ENABLED", "PARAM OVERRIDES")
			for _, b := range bindings {
				enabled := "yes"
				if !b.Enabled {
					enabled = "no"
				}
				params := string(b.Params)
				if params == "" {
					params = "-"
				}
				t.AddRow(strconv.FormatInt(b.CheckID, 10), enabled, truncate(params, 50))
			}
			t.Render()
			return nil
		},
	}
}

func newCheckBindCmd() *cobra.Command {
	var params string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "bind <host-id> <check-key>",
		Short: "Attach a check to a host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			req := &client.BindCheckRequest{CheckKey: args[1]}
			if disabled {
				enabled := false
				req.Enabled = &enabled
			}
			if params != "" {
				if !json.Valid([]byte(params)) {
					return fmt.Errorf("params must be valid JSON")
				}
				req.Params = json.RawMessage(params)
			}

			if _, err := apiClient.Checks().Bind(context.Background(), hostID, req); err != nil {
				return fmt.Errorf("failed to bind check: %w", err)
			}

			fmt.Printf("Bound %s to host %d\n", args[1], hostID)
			return nil
		},
	}

	cmd.Flags().StringVar(&params, "params", "", `parameter overrides as JSON, e.g. '{"threshold_pct": 80}'`)
	cmd.Flags().BoolVar(&disabled, "disabled", false, "create the binding disabled")

	return cmd
}

func newCheckUnbindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unbind <host-id> <check-key>",
		Short: "Remove a check from a host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			if err := apiClient.Checks().Unbind(context.Background(), hostID, args[1]); err != nil {
				return fmt.Errorf("failed to unbind check: %w", err)
			}

			fmt.Printf("Unbound %s from host %d\n", args[1], hostID)
			return nil
		},
	}
}
