package alert

import "time"

// Alert is one episode of a check being in the triggered state for a host,
// from open to resolved. Multiple historical episodes may exist per
// (host, check); the current state is the status of the most recent one.
type Alert struct {
	ID             int64      `json:"id"`
	HostID         int64      `json:"host_id"`
	CheckID        int64      `json:"check_id"`
	SampleID       *int64     `json:"sample_id,omitempty"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	Severity       string     `json:"severity"`
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Alert status values
const (
	StatusOpen         = "open"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"

	// StatusNone is the synthetic state for a (host, check) pair with no
	// alert rows. It is never stored.
	StatusNone = ""
)

// Filter contains alert listing options
type Filter struct {
	HostID   int64
	CheckID  int64
	Status   string
	Severity string
}
