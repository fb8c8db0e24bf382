package accounts

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory account repository for tests and early
// development.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Account // keyed by id
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{rows: map[string]Account{}} }

func (r *MemoryRepo) Insert(ctx context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[a.ID] = a
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return ErrNotFound
	}
	r.rows[a.ID] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) GetByExternalID(ctx context.Context, externalID string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.ExternalID == externalID {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}
