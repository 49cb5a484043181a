package agent

import (
	"context"
	"time"

	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/pkg/client"
)

// Agent periodically collects local metrics and reports them to a collector.
type Agent struct {
	client   *client.Client
	interval time.Duration
	diskPath string
	logger   *logger.Logger
}

// Config holds the agent configuration
type Config struct {
	Client   *client.Client
	Interval time.Duration // collection cadence (default: 60s)
	DiskPath string        // mount to measure (default: "/")
}

// New creates a new reporting agent
func New(cfg Config, log *logger.Logger) *Agent {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.DiskPath == "" {
		cfg.DiskPath = "/"
	}
	return &Agent{
		client:   cfg.Client,
		interval: cfg.Interval,
		diskPath: cfg.DiskPath,
		logger:   log,
	}
}

// Run reports once immediately and then on every tick until the context is
// cancelled. A failed report is logged and retried on the next tick; the
// server regards a silent host as offline, which is exactly right.
func (a *Agent) Run(ctx context.Context) {
	a.logger.WithFields(map[string]interface{}{
		"interval": a.interval.String(),
	}).Info("Starting reporting agent")

	a.reportOnce(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.reportOnce(ctx)
		case <-ctx.Done():
			a.logger.Info("Reporting agent stopped")
			return
		}
	}
}

func (a *Agent) reportOnce(ctx context.Context) {
	report := Collect(ctx, a.diskPath)

	dataID, err := a.client.Report(ctx, report)
	if err != nil {
		a.logger.ErrorWithErr(err, "Report failed")
		return
	}

	a.logger.WithFields(map[string]interface{}{
		"data_id": dataID,
	}).Debug("Report delivered")
}
