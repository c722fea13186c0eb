package trek

import (
	"context"
)

// Repository defines storage operations for treks and their route data.
type Repository interface {
	// List retrieves treks ordered by name with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Get retrieves a trek by ID. Returns ErrTrekNotFound when missing.
	Get(ctx context.Context, id string) (*Trek, error)

	// GetData retrieves the route and camps for a trek.
	// Returns ErrTrekDataNotFound when the trek has no data record.
	GetData(ctx context.Context, trekID string) (*TrekData, error)

	// Create creates a new trek record.
	Create(ctx context.Context, t *Trek) error

	// Update updates an existing trek record.
	Update(ctx context.Context, t *Trek) error

	// Delete deletes a trek and its data.
	Delete(ctx context.Context, id string) error

	// PutData replaces the route and camps for a trek.
	PutData(ctx context.Context, data *TrekData) error
}
