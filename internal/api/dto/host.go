package dto

import (
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/host"
)

// RegisterHostRequest creates a new monitored host.
type RegisterHostRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	OSName    string `json:"os_name" validate:"omitempty,max=255"`
	OSVersion string `json:"os_version" validate:"omitempty,max=255"`
	Key       string `json:"key" validate:"omitempty,max=64"`
}

// HostDTO is the admin-facing host view. The key appears only in the
// registration response, never in listings.
type HostDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	OSName    string     `json:"os_name,omitempty"`
	OSVersion string     `json:"os_version,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Key       string     `json:"key,omitempty"`
}

// HostFromDomain converts a domain host to a DTO.
func HostFromDomain(h *host.Host, includeKey bool) *HostDTO {
	d := &HostDTO{
		ID:        h.ID,
		Name:      h.Name,
		OSName:    h.OSName,
		OSVersion: h.OSVersion,
		IsActive:  h.IsActive,
		LastSeen:  h.LastSeen,
		CreatedAt: h.CreatedAt,
	}
	if includeKey {
		d.Key = h.Key
	}
	return d
}

// HostsFromDomain converts a host list, always without keys.
func HostsFromDomain(hosts []*host.Host) []*HostDTO {
	out := make([]*HostDTO, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, HostFromDomain(h, false))
	}
	return out
}
