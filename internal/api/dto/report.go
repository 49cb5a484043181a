package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/sample"
)

// knownReportFields are the payload keys the collector models. Anything else
// is preserved verbatim in the sample's extra blob.
var knownReportFields = map[string]struct{}{
	"host_key": {}, "collected_at": {},
	"int_ip": {}, "public_ip": {}, "kernel_name": {}, "kernel_version": {},
	"cpu_pct": {}, "mem_used_mb": {}, "mem_total_mb": {}, "mem_pct": {},
	"disk_used_gb": {}, "disk_total_gb": {}, "disk_pct": {},
	"dataset_name": {}, "partition_key": {}, "files_count": {}, "size_bytes": {},
	"min_event_ts": {}, "max_event_ts": {},
}

// collectedAtLayouts are the accepted timestamp shapes, tried in order.
// Agents in the field send both zoned and naive ISO-8601; naive is read as UTC.
var collectedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z0700",
}

// ReportRequest is the agent-facing ingestion payload. All metric fields are
// optional; a report with only a host key is still a valid liveness signal.
type ReportRequest struct {
	HostKey     string  `json:"host_key" validate:"omitempty,max=64"`
	CollectedAt *string `json:"collected_at"`

	IntIP         *string `json:"int_ip" validate:"omitempty,max=64"`
	PublicIP      *string `json:"public_ip" validate:"omitempty,max=64"`
	KernelName    *string `json:"kernel_name" validate:"omitempty,max=255"`
	KernelVersion *string `json:"kernel_version" validate:"omitempty,max=255"`

	CPUPct     *float64 `json:"cpu_pct" validate:"omitempty,gte=0,lte=100"`
	MemUsedMB  *int64   `json:"mem_used_mb" validate:"omitempty,gte=0"`
	MemTotalMB *int64   `json:"mem_total_mb" validate:"omitempty,gte=0"`
	MemPct     *float64 `json:"mem_pct" validate:"omitempty,gte=0,lte=100"`

	DiskUsedGB  *float64 `json:"disk_used_gb" validate:"omitempty,gte=0"`
	DiskTotalGB *float64 `json:"disk_total_gb" validate:"omitempty,gte=0"`
	DiskPct     *float64 `json:"disk_pct" validate:"omitempty,gte=0,lte=100"`

	DatasetName  *string `json:"dataset_name" validate:"omitempty,max=255"`
	PartitionKey *string `json:"partition_key" validate:"omitempty,max=255"`
	FilesCount   *int64  `json:"files_count" validate:"omitempty,gte=0"`
	SizeBytes    *int64  `json:"size_bytes" validate:"omitempty,gte=0"`
	MinEventTS   *string `json:"min_event_ts"`
	MaxEventTS   *string `json:"max_event_ts"`

	// extra holds unmodeled keys captured during decoding
	extra map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and stashes everything else, so a
// newer agent talking to an older collector loses nothing.
func (r *ReportRequest) UnmarshalJSON(data []byte) error {
	type plain ReportRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, ok := knownReportFields[k]; ok {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		p.extra = raw
	}

	*r = ReportRequest(p)
	return nil
}

// ParseCollectedAt interprets the collected_at field. A nil field yields a
// zero time, which the ingest path replaces with the receive time.
func (r *ReportRequest) ParseCollectedAt() (time.Time, error) {
	if r.CollectedAt == nil || *r.CollectedAt == "" {
		return time.Time{}, nil
	}
	return parseTimestamp(*r.CollectedAt)
}

// ToSample converts the request into a domain sample. Validation and
// timestamp parsing are assumed to have already passed.
func (r *ReportRequest) ToSample() (*sample.Sample, error) {
	collectedAt, err := r.ParseCollectedAt()
	if err != nil {
		return nil, err
	}

	s := &sample.Sample{
		CollectedAt:   collectedAt,
		IntIP:         r.IntIP,
		PublicIP:      r.PublicIP,
		KernelName:    r.KernelName,
		KernelVersion: r.KernelVersion,
		CPUPct:        r.CPUPct,
		MemUsedMB:     r.MemUsedMB,
		MemTotalMB:    r.MemTotalMB,
		MemPct:        r.MemPct,
		DiskUsedGB:    r.DiskUsedGB,
		DiskTotalGB:   r.DiskTotalGB,
		DiskPct:       r.DiskPct,
		DatasetName:   r.DatasetName,
		PartitionKey:  r.PartitionKey,
		FilesCount:    r.FilesCount,
		SizeBytes:     r.SizeBytes,
	}

	if r.MinEventTS != nil && *r.MinEventTS != "" {
		t, err := parseTimestamp(*r.MinEventTS)
		if err != nil {
			return nil, fmt.Errorf("min_event_ts: %w", err)
		}
		s.MinEventTS = &t
	}
	if r.MaxEventTS != nil && *r.MaxEventTS != "" {
		t, err := parseTimestamp(*r.MaxEventTS)
		if err != nil {
			return nil, fmt.Errorf("max_event_ts: %w", err)
		}
		s.MaxEventTS = &t
	}

	if len(r.extra) > 0 {
		blob, err := json.Marshal(r.extra)
		if err != nil {
			return nil, err
		}
		s.Extra = blob
	}

	return s, nil
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range collectedAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

// ReportResponse acknowledges a stored report.
type ReportResponse struct {
	OK     bool  `json:"ok"`
	DataID int64 `json:"data_id"`
}
