package check

import "context"

// BindingRow is the raw join of a binding with its kind, before parameter
// merging. Only rows enabled on both sides are returned.
type BindingRow struct {
	BindingID     int64
	CheckID       int64
	Name          string
	Key           string
	Evaluator     string
	Severity      string
	DefaultParams []byte
	Params        []byte
}

// Repository defines the interface for check-kind and binding data access
type Repository interface {
	// ListKinds retrieves all check kinds
	ListKinds(ctx context.Context) ([]*Kind, error)

	// GetKindByKey retrieves a check kind by its key
	GetKindByKey(ctx context.Context, key string) (*Kind, error)

	// BindingsFor returns the enabled bindings for a host joined with their
	// kinds, filtered to kinds that are themselves enabled.
	BindingsFor(ctx context.Context, hostID int64) ([]*BindingRow, error)

	// ListBindings retrieves all bindings for a host, enabled or not
	ListBindings(ctx context.Context, hostID int64) ([]*Binding, error)

	// Upsert creates or updates the binding for (host, check)
	Upsert(ctx context.Context, b *Binding) error

	// Delete removes the binding for (host, check)
	Delete(ctx context.Context, hostID, checkID int64) error
}
