package sample

import (
	"encoding/json"
	"time"
)

// Sample is one timestamped metric report from a host. Samples are immutable
// and append-only; ordering is by collected_at, not arrival order.
type Sample struct {
	ID          int64     `json:"id"`
	HostID      int64     `json:"host_id"`
	CollectedAt time.Time `json:"collected_at"`
	CreatedAt   time.Time `json:"created_at"`

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

	// Data-pipeline reports share the ingestion path with resource metrics.
	DatasetName  *string    `json:"dataset_name,omitempty"`
	PartitionKey *string    `json:"partition_key,omitempty"`
	FilesCount   *int64     `json:"files_count,omitempty"`
	SizeBytes    *int64     `json:"size_bytes,omitempty"`
	MinEventTS   *time.Time `json:"min_event_ts,omitempty"`
	MaxEventTS   *time.Time `json:"max_event_ts,omitempty"`

	// Extra carries any fields the collector does not model.
	Extra json.RawMessage `json:"extra,omitempty"`
}
