package alert

import "context"

// Repository defines the interface for alert data access
type Repository interface {
	// Create inserts a new alert episode and returns its ID
	Create(ctx context.Context, a *Alert) (int64, error)

	// GetByID retrieves an alert by ID
	GetByID(ctx context.Context, id int64) (*Alert, error)

	// CurrentStatus returns the status of the most recently triggered alert
	// for (host, check), or StatusNone when no episode exists. This is
	// queried fresh at each evaluation; it is never cached.
	CurrentStatus(ctx context.Context, hostID, checkID int64) (string, error)

	// ResolveLatestOpen marks the most recent open alert for (host, check) as
	// resolved, appending the resolution note to its message. Resolving when
	// no open alert exists is a no-op.
	ResolveLatestOpen(ctx context.Context, hostID, checkID int64, note string) error

	// Acknowledge marks an open alert acknowledged. Manual operation; the
	// evaluation engine never calls this.
	Acknowledge(ctx context.Context, id int64) error

	// List retrieves alerts matching the filter, newest first
	List(ctx context.Context, f Filter, limit int) ([]*Alert, error)

	// CountByStatus counts alerts grouped by status
	CountByStatus(ctx context.Context) (map[string]int, error)
}
