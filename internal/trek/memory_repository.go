package trek

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	treks map[string]*Trek
	data  map[string]*TrekData
}

// NewInMemoryRepository creates a new in-memory trek repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		treks: make(map[string]*Trek),
		data:  make(map[string]*TrekData),
	}
}

// List retrieves treks ordered by name with pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var treks []*Trek
	for _, t := range r.treks {
		cpy := *t
		treks = append(treks, &cpy)
	}
	sort.Slice(treks, func(i, j int) bool { return treks[i].Name < treks[j].Name })

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: treks}
	if len(treks) > limit {
		result.Items = treks[:limit]
		result.NextCursor = treks[limit-1].ID
	}

	return result, nil
}

// Get retrieves a trek by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Trek, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.treks[id]
	if !ok {
		return nil, ErrTrekNotFound
	}

	cpy := *t
	return &cpy, nil
}

// GetData retrieves the route and camps for a trek.
func (r *InMemoryRepository) GetData(_ context.Context, trekID string) (*TrekData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.data[trekID]
	if !ok {
		return nil, ErrTrekDataNotFound
	}

	cpy := *d
	return &cpy, nil
}

// Create creates a new trek record.
func (r *InMemoryRepository) Create(_ context.Context, t *Trek) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *t
	r.treks[t.ID] = &cpy
	return nil
}

// Update updates an existing trek record.
func (r *InMemoryRepository) Update(_ context.Context, t *Trek) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.treks[t.ID]; !ok {
		return ErrTrekNotFound
	}

	cpy := *t
	r.treks[t.ID] = &cpy
	return nil
}

// Delete deletes a trek and its data.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.treks, id)
	delete(r.data, id)
	return nil
}

// PutData replaces the route and camps for a trek.
func (r *InMemoryRepository) PutData(_ context.Context, data *TrekData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *data
	r.data[data.TrekID] = &cpy
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
