package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostwatch/hostwatch/internal/agent"
	"github.com/hostwatch/hostwatch/internal/config"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/pkg/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if cfg.Agent.HostKey == "" {
		log.Fatal("AGENT_HOST_KEY is required")
	}

	c := client.NewClient(client.Config{
		BaseURL: cfg.Agent.ServerURL,
		HostKey: cfg.Agent.HostKey,
		Timeout: cfg.Agent.Timeout,
	})

	a := agent.New(agent.Config{
		Client:   c,
		Interval: cfg.Agent.Interval,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Run(ctx)
}
