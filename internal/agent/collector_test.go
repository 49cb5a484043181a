package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	godisk "github.com/shirou/gopsutil/v4/disk"
	gohost "github.com/shirou/gopsutil/v4/host"
	gomem "github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubCollectors(t *testing.T) {
	t.Helper()
	origCPU, origMem, origDisk, origHost := cpuPercent, virtualMemory, diskUsage, hostInfo
	t.Cleanup(func() {
		cpuPercent, virtualMemory, diskUsage, hostInfo = origCPU, origMem, origDisk, origHost
	})

	cpuPercent = func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
		return []float64{37.5}, nil
	}
	virtualMemory = func(ctx context.Context) (*gomem.VirtualMemoryStat, error) {
		return &gomem.VirtualMemoryStat{
			Total:       8 * 1024 * 1024 * 1024,
			Used:        2 * 1024 * 1024 * 1024,
			UsedPercent: 25.0,
		}, nil
	}
	diskUsage = func(ctx context.Context, path string) (*godisk.UsageStat, error) {
		return &godisk.UsageStat{
			Total:       100 * 1024 * 1024 * 1024,
			Used:        71 * 1024 * 1024 * 1024,
			UsedPercent: 71.0,
		}, nil
	}
	hostInfo = func(ctx context.Context) (*gohost.InfoStat, error) {
		return &gohost.InfoStat{OS: "linux", KernelVersion: "6.8.0"}, nil
	}
}

func TestCollect(t *testing.T) {
	stubCollectors(t)

	report := Collect(context.Background(), "/")

	require.NotNil(t, report.CPUPct)
	assert.Equal(t, 37.5, *report.CPUPct)
	require.NotNil(t, report.MemPct)
	assert.Equal(t, 25.0, *report.MemPct)
	require.NotNil(t, report.MemUsedMB)
	assert.Equal(t, int64(2048), *report.MemUsedMB)
	require.NotNil(t, report.MemTotalMB)
	assert.Equal(t, int64(8192), *report.MemTotalMB)
	require.NotNil(t, report.DiskPct)
	assert.Equal(t, 71.0, *report.DiskPct)
	require.NotNil(t, report.KernelName)
	assert.Equal(t, "linux", *report.KernelName)

	require.NotNil(t, report.CollectedAt)
	parsed, err := time.Parse(time.RFC3339Nano, *report.CollectedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestCollectPartialFailure(t *testing.T) {
	stubCollectors(t)
	diskUsage = func(ctx context.Context, path string) (*godisk.UsageStat, error) {
		return nil, errors.New("permission denied")
	}

	report := Collect(context.Background(), "/restricted")

	// CPU and memory still present, disk absent
	assert.NotNil(t, report.CPUPct)
	assert.NotNil(t, report.MemPct)
	assert.Nil(t, report.DiskPct)
	assert.Nil(t, report.DiskUsedGB)
}
