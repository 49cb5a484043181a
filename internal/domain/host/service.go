package host

import "context"

// Service defines the interface for host business logic
type Service interface {
	// Register creates a new host, generating a secret key when none is given
	Register(ctx context.Context, name, osName, osVersion, key string) (*Host, error)

	// Get retrieves a host by ID
	Get(ctx context.Context, id int64) (*Host, error)

	// List retrieves all hosts
	List(ctx context.Context) ([]*Host, error)

	// Deactivate marks a host inactive
	Deactivate(ctx context.Context, id int64) error
}
