package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hostwatch/hostwatch/pkg/client"
	"github.com/spf13/cobra"
)

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage monitored hosts",
	}

	cmd.AddCommand(newHostListCmd())
	cmd.AddCommand(newHostRegisterCmd())
	cmd.AddCommand(newHostGetCmd())
	cmd.AddCommand(newHostDeactivateCmd())
	cmd.AddCommand(newHostSamplesCmd())

	return cmd
}

func newHostListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := apiClient.Hosts().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list hosts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(hosts)
			}

			t := NewTable("ID", "NAME", "OS", "ACTIVE", "LAST SEEN")
			for _, h := range hosts {
				active := "yes"
				if !h.IsActive {
					active = "no"
				}
				t.AddRow(
					strconv.FormatInt(h.ID, 10),
					h.Name,
					h.OSName,
					active,
					formatTimePtr(h.LastSeen),
				)
			}
			t.Render()
			return nil
		},
	}
}

func newHostRegisterCmd() *cobra.Command {
	var osName, osVersion, key string

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := apiClient.Hosts().Register(context.Background(), &client.RegisterHostRequest{
				Name:      args[0],
				OSName:    osName,
				OSVersion: osVersion,
				Key:       key,
			})
			if err != nil {
				return fmt.Errorf("failed to register host: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(h)
			}

			fmt.Printf("Registered host %q with ID %d\n", h.Name, h.ID)
			fmt.Printf("Host key (shown only once): %s\n", h.Key)
			return nil
		},
	}

	cmd.Flags().StringVar(&osName, "os", "", "operating system name")
	cmd.Flags().StringVar(&osVersion, "os-version", "", "operating system version")
	cmd.Flags().StringVar(&key, "key", "", "explicit host key (generated when omitted)")

	return cmd
}

func newHostGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get host details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			h, err := apiClient.Hosts().Get(context.Background(), id)
			if err != nil {
				return fmt.Errorf("failed to get host: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(h)
			}

			fmt.Printf("ID:        %d\n", h.ID)
			fmt.Printf("Name:      %s\n", h.Name)
			fmt.Printf("OS:        %s %s\n", h.OSName, h.OSVersion)
			fmt.Printf("Active:    %t\n", h.IsActive)
			fmt.Printf("Last seen: %s\n", formatTimePtr(h.LastSeen))
			fmt.Printf("Created:   %s\n", formatTime(h.CreatedAt))
			return nil
		},
	}
}

func newHostDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			if err := apiClient.Hosts().Deactivate(context.Background(), id); err != nil {
				return fmt.Errorf("failed to deactivate host: %w", err)
			}

			fmt.Printf("Host %d deactivated\n", id)
			return nil
		},
	}
}

func newHostSamplesCmd() *cobra.Command {
	var from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "samples <id>",
		Short: "Show a host's recent samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid host ID: %s", args[0])
			}

			samples, err := apiClient.Hosts().Samples(context.Background(), id, &client.SampleListOptions{
				From:  from,
				To:    to,
				Limit: limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list samples: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(samples)
			}

			t := NewTable("ID", "COLLECTED", "CPU%", "MEM%", "DISK%")
			for _, s := range samples {
				t.AddRow(
					strconv.FormatInt(s.ID, 10),
					formatTime(s.CollectedAt),
					formatPct(s.CPUPct),
					formatPct(s.MemPct),
					formatPct(s.DiskPct),
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "window start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "window end (RFC3339)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum samples to return")

	return cmd
}

func formatPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
