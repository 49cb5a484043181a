package sample

import (
	"context"
	"time"
)

// Repository defines the interface for sample data access. The store is
// append-only: there is no update or delete path.
type Repository interface {
	// Insert appends a sample and returns its ID
	Insert(ctx context.Context, s *Sample) (int64, error)

	// LatestForHost returns the sample with the greatest collected_at for the
	// host, or a not-found error if the host has never reported.
	LatestForHost(ctx context.Context, hostID int64) (*Sample, error)

	// ListForHost retrieves samples for a host within [from, to], newest first
	ListForHost(ctx context.Context, hostID int64, from, to time.Time, limit int) ([]*Sample, error)
}
