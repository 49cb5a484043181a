package host

import "time"

// Host is a monitored machine identified by a unique secret key.
type Host struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"-"`
	OSName    string     `json:"os_name,omitempty"`
	OSVersion string     `json:"os_version,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MaxKeyLen is the longest accepted host key. Keys are unique and immutable
// once assigned.
const MaxKeyLen = 64
