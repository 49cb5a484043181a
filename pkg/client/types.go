package client

import (
	"encoding/json"
	"time"
)

// Report is one metric sample submitted to the collector. Nil fields are
// omitted from the wire; unknown extra fields can be added via Extra.
type Report struct {
	CollectedAt *string `json:"collected_at,omitempty"`

	IntIP         *string `json:"int_ip,omitempty"`
	PublicIP      *string `json:"public_ip,omitempty"`
	KernelName    *string `json:"kernel_name,omitempty"`
	KernelVersion *string `json:"kernel_version,omitempty"`

	CPUPct     *float64 `json:"cpu_pct,omitempty"`
	MemUsedMB  *int64   `json:"mem_used_mb,omitempty"`
	MemTotalMB *int64   `json:"mem_total_mb,omitempty"`
	MemPct     *float64 `json:"mem_pct,omitempty"`

	DiskUsedGB  *float64 `json:"disk_used_gb,omitempty"`
	DiskTotalGB *float64 `json:"disk_total_gb,omitempty"`
	DiskPct     *float64 `json:"disk_pct,omitempty"`

	DatasetName  *string `json:"dataset_name,omitempty"`
	PartitionKey *string `json:"partition_key,omitempty"`
	FilesCount   *int64  `json:"files_count,omitempty"`
	SizeBytes    *int64  `json:"size_bytes,omitempty"`
	MinEventTS   *string `json:"min_event_ts,omitempty"`
	MaxEventTS   *string `json:"max_event_ts,omitempty"`
}

// Host is a monitored machine
type Host struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	OSName    string     `json:"os_name,omitempty"`
	OSVersion string     `json:"os_version,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Key       string     `json:"key,omitempty"`
}

// Sample is a stored metric report
type Sample struct {
	ID          int64           `json:"id"`
	HostID      int64           `json:"host_id"`
	CollectedAt time.Time       `json:"collected_at"`
	CreatedAt   time.Time       `json:"created_at"`
	CPUPct      *float64        `json:"cpu_pct,omitempty"`
	MemPct      *float64        `json:"mem_pct,omitempty"`
	DiskPct     *float64        `json:"disk_pct,omitempty"`
	Extra       json.RawMessage `json:"extra,omitempty"`
}

// Alert is one episode of a failing check
type Alert struct {
	ID          int64     `json:"id"`
	HostID      int64     `json:"host_id"`
	CheckID     int64     `json:"check_id"`
	SampleID    *int64    `json:"sample_id,omitempty"`
	TriggeredAt time.Time `json:"triggered_at"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CheckKind is a catalog entry
type CheckKind struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Key             string          `json:"key"`
	Evaluator       string          `json:"evaluator"`
	DefaultParams   json.RawMessage `json:"default_params,omitempty"`
	Severity        string          `json:"severity"`
	CooldownMinutes int             `json:"cooldown_minutes"`
	Enabled         bool            `json:"enabled"`
}

// Binding attaches a check kind to a host
type Binding struct {
	ID      int64           `json:"id"`
	HostID  int64           `json:"host_id"`
	CheckID int64           `json:"check_id"`
	Enabled bool            `json:"enabled"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// PassSummary reports the outcome of an evaluation pass
type PassSummary struct {
	StartedAt      time.Time `json:"started_at"`
	HostsChecked   int       `json:"hosts_checked"`
	ChecksRun      int       `json:"checks_run"`
	AlertsOpened   int       `json:"alerts_opened"`
	AlertsResolved int       `json:"alerts_resolved"`
	Errors         int       `json:"errors"`
}

// dataEnvelope unwraps {"ok":true,"data":...} admin responses.
type dataEnvelope struct {
	OK   bool            `json:"ok"`
	Data json.RawMessage `json:"data"`
}
