package host

import (
	"context"
	"time"
)

// Repository defines the interface for host data access
type Repository interface {
	// Create registers a new host
	Create(ctx context.Context, h *Host) (int64, error)

	// GetByID retrieves a host by ID regardless of active state
	GetByID(ctx context.Context, id int64) (*Host, error)

	// GetByKey resolves an active host by its secret key. An unknown key and
	// a deactivated host both return a not-found error.
	GetByKey(ctx context.Context, key string) (*Host, error)

	// TouchLastSeen stamps the host's last_seen time
	TouchLastSeen(ctx context.Context, id int64, t time.Time) error

	// ListActive retrieves all active hosts
	ListActive(ctx context.Context) ([]*Host, error)

	// List retrieves all hosts, active or not
	List(ctx context.Context) ([]*Host, error)

	// Deactivate marks a host inactive. Hosts are never deleted.
	Deactivate(ctx context.Context, id int64) error
}
