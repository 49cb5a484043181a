package agent

import (
	"context"
	"time"

	gocpu "github.com/shirou/gopsutil/v4/cpu"
	godisk "github.com/shirou/gopsutil/v4/disk"
	gohost "github.com/shirou/gopsutil/v4/host"
	gomem "github.com/shirou/gopsutil/v4/mem"

	"github.com/hostwatch/hostwatch/pkg/client"
)

// System call wrappers for testing
var (
	cpuPercent    = gocpu.PercentWithContext
	virtualMemory = gomem.VirtualMemoryWithContext
	diskUsage     = godisk.UsageWithContext
	hostInfo      = gohost.InfoWithContext
)

const bytesPerMB = 1024 * 1024

// Collect gathers one point-in-time sample of local resource usage. Each
// subsystem fails independently; a machine without a readable root mount
// still reports CPU and memory.
func Collect(ctx context.Context, diskPath string) *client.Report {
	collectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	report := &client.Report{}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	report.CollectedAt = &now

	if percentages, err := cpuPercent(collectCtx, time.Second, false); err == nil && len(percentages) > 0 {
		report.CPUPct = &percentages[0]
	}

	if memStats, err := virtualMemory(collectCtx); err == nil {
		usedMB := int64(memStats.Used / bytesPerMB)
		totalMB := int64(memStats.Total / bytesPerMB)
		report.MemUsedMB = &usedMB
		report.MemTotalMB = &totalMB
		report.MemPct = &memStats.UsedPercent
	}

	if usage, err := diskUsage(collectCtx, diskPath); err == nil {
		usedGB := float64(usage.Used) / (1024 * 1024 * 1024)
		totalGB := float64(usage.Total) / (1024 * 1024 * 1024)
		report.DiskUsedGB = &usedGB
		report.DiskTotalGB = &totalGB
		report.DiskPct = &usage.UsedPercent
	}

	if info, err := hostInfo(collectCtx); err == nil {
		report.KernelName = &info.OS
		report.KernelVersion = &info.KernelVersion
	}

	return report
}
