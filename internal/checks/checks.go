package checks

import (
	"fmt"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
)

// Input is everything an evaluator may look at: the host record, its most
// recent sample (nil if it has never reported) and the evaluation time.
type Input struct {
	Host   *host.Host
	Latest *sample.Sample
	Now    time.Time
}

// Verdict is the outcome of one evaluation. NoData marks the neutral
// "not triggered, nothing to judge" case; it is not an error.
type Verdict struct {
	Triggered bool
	NoData    bool
	Message   string
}

// Evaluator is a single threshold predicate. Implementations are the fixed
// set constructed by ForKey; there is no runtime registration.
type Evaluator interface {
	Key() string
	Evaluate(in Input) Verdict
}

// ForKey returns the evaluator for a check kind's evaluator key, configured
// from the merged parameter map. An unknown key is a configuration error for
// that check only.
func ForKey(key string, params map[string]interface{}) (Evaluator, error) {
	switch key {
	case check.EvaluatorHostOnline:
		return &HostOnline{Threshold: paramDuration(params, "offline_threshold_minutes", 60)}, nil
	case check.EvaluatorDiskSpace:
		return &DiskSpace{ThresholdPct: paramFloat(params, "threshold_pct", 90)}, nil
	case check.EvaluatorMemoryUsage:
		return &MemoryUsage{ThresholdPct: paramFloat(params, "threshold_pct", 90)}, nil
	case check.EvaluatorCPUUsage:
		return &CPUUsage{ThresholdPct: paramFloat(params, "threshold_pct", 90)}, nil
	default:
		return nil, fmt.Errorf("unknown evaluator %q", key)
	}
}

// HostOnline triggers when the host has not reported within the threshold,
// or has never reported at all.
type HostOnline struct {
	Threshold time.Duration
}

func (c *HostOnline) Key() string { return check.EvaluatorHostOnline }

func (c *HostOnline) Evaluate(in Input) Verdict {
	var lastSeen time.Time
	switch {
	case in.Latest != nil:
		lastSeen = in.Latest.CollectedAt
	case in.Host.LastSeen != nil:
		lastSeen = *in.Host.LastSeen
	default:
		return Verdict{Triggered: true, Message: fmt.Sprintf("Host '%s' has never reported data", in.Host.Name)}
	}

	age := in.Now.Sub(lastSeen)
	if age > c.Threshold {
		return Verdict{
			Triggered: true,
			Message: fmt.Sprintf("Host '%s' offline for %d minutes (threshold: %d)",
				in.Host.Name, int(age.Minutes()), int(c.Threshold.Minutes())),
		}
	}
	return Verdict{Message: fmt.Sprintf("Host '%s' is online", in.Host.Name)}
}

// DiskSpace triggers when the latest sample's disk usage meets the threshold.
type DiskSpace struct {
	ThresholdPct float64
}

func (c *DiskSpace) Key() string { return check.EvaluatorDiskSpace }

func (c *DiskSpace) Evaluate(in Input) Verdict {
	if in.Latest == nil || in.Latest.DiskPct == nil {
		return Verdict{NoData: true, Message: "No disk data available"}
	}
	return thresholdVerdict(in.Host.Name, "disk", *in.Latest.DiskPct, c.ThresholdPct)
}

// MemoryUsage triggers when the latest sample's memory usage meets the threshold.
type MemoryUsage struct {
	ThresholdPct float64
}

func (c *MemoryUsage) Key() string { return check.EvaluatorMemoryUsage }

func (c *MemoryUsage) Evaluate(in Input) Verdict {
	if in.Latest == nil || in.Latest.MemPct == nil {
		return Verdict{NoData: true, Message: "No memory data available"}
	}
	return thresholdVerdict(in.Host.Name, "memory", *in.Latest.MemPct, c.ThresholdPct)
}

// CPUUsage triggers when the latest sample's CPU usage meets the threshold.
type CPUUsage struct {
	ThresholdPct float64
}

func (c *CPUUsage) Key() string { return check.EvaluatorCPUUsage }

func (c *CPUUsage) Evaluate(in Input) Verdict {
	if in.Latest == nil || in.Latest.CPUPct == nil {
		return Verdict{NoData: true, Message: "No CPU data available"}
	}
	return thresholdVerdict(in.Host.Name, "CPU", *in.Latest.CPUPct, c.ThresholdPct)
}

func thresholdVerdict(hostName, resource string, value, threshold float64) Verdict {
	if value >= threshold {
		return Verdict{
			Triggered: true,
			Message: fmt.Sprintf("Host '%s' %s usage critical: %.1f%% (threshold: %.0f%%)",
				hostName, resource, value, threshold),
		}
	}
	return Verdict{
		Message: fmt.Sprintf("Host '%s' %s usage normal: %.1f%%", hostName, resource, value),
	}
}

// Parameter maps come from merged JSON, so numbers arrive as float64. Typed
// values appear when tests build maps directly.

func paramFloat(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

func paramDuration(params map[string]interface{}, key string, defMinutes int) time.Duration {
	minutes := paramFloat(params, key, float64(defMinutes))
	return time.Duration(minutes * float64(time.Minute))
}
