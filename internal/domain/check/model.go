package check

import (
	"encoding/json"
	"time"
)

// Kind is a named threshold predicate with default parameters and a severity
// tier. The evaluator key selects one of the fixed set of evaluators in
// internal/checks.
type Kind struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Key             string          `json:"key"`
	Evaluator       string          `json:"evaluator"`
	DefaultParams   json.RawMessage `json:"default_params,omitempty"`
	Severity        string          `json:"severity"`
	CooldownMinutes int             `json:"cooldown_minutes"`
	Enabled         bool            `json:"enabled"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Severity tiers, ordered L1 < L2 < L3.
const (
	SeverityL1 = "L1"
	SeverityL2 = "L2"
	SeverityL3 = "L3"
)

// Evaluator keys. This is a closed set; adding a variant means adding a
// branch in internal/checks.
const (
	EvaluatorHostOnline  = "host_online"
	EvaluatorDiskSpace   = "disk_space"
	EvaluatorMemoryUsage = "memory_usage"
	EvaluatorCPUUsage    = "cpu_usage"
)

// Binding enables a check kind for one host, optionally overriding parameters.
// Unique per (host, check).
type Binding struct {
	ID        int64           `json:"id"`
	HostID    int64           `json:"host_id"`
	CheckID   int64           `json:"check_id"`
	Enabled   bool            `json:"enabled"`
	Params    json.RawMessage `json:"params,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Resolved is a binding joined with its kind, carrying the merged parameter
// map the evaluator will run with.
type Resolved struct {
	CheckID   int64
	Name      string
	Key       string
	Evaluator string
	Severity  string
	Params    map[string]interface{}
}

// MergeParams overlays binding overrides on kind defaults, key by key. Nested
// structures are replaced wholesale, not deep-merged.
func MergeParams(defaults, overrides json.RawMessage) (map[string]interface{}, error) {
	merged := make(map[string]interface{})

	if len(defaults) > 0 {
		if err := json.Unmarshal(defaults, &merged); err != nil {
			return nil, err
		}
	}

	if len(overrides) > 0 {
		var o map[string]interface{}
		if err := json.Unmarshal(overrides, &o); err != nil {
			return nil, err
		}
		for k, v := range o {
			merged[k] = v
		}
	}

	return merged, nil
}
