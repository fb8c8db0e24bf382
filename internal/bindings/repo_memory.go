package bindings

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory binding repository for tests and early
// development. Uniqueness is enforced the same way the Postgres indexes do.
type MemoryRepo struct {
	mu   sync.Mutex
	rows map[string]Binding // keyed by id
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{rows: map[string]Binding{}} }

func (r *MemoryRepo) Insert(ctx context.Context, b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.rows {
		if ex.PhoneNumber == b.PhoneNumber {
			return ErrPhoneNumberTaken
		}
		if ex.AgentID == b.AgentID {
			return ErrAgentTaken
		}
	}
	r.rows[b.ID] = b
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, b Binding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[b.ID]; !ok {
		return ErrNotFound
	}
	for _, ex := range r.rows {
		if ex.ID != b.ID && ex.PhoneNumber == b.PhoneNumber {
			return ErrPhoneNumberTaken
		}
	}
	r.rows[b.ID] = b
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

func (r *MemoryRepo) Get(ctx context.Context, id string) (Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return Binding{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) (Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.PhoneNumber == phoneNumber {
			return b, nil
		}
	}
	return Binding{}, ErrNotFound
}

func (r *MemoryRepo) FindByAgentID(ctx context.Context, agentID string) (Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.rows {
		if b.AgentID == agentID {
			return b, nil
		}
	}
	return Binding{}, ErrNotFound
}

func (r *MemoryRepo) ListByAccount(ctx context.Context, accountID string) ([]Binding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Binding, 0)
	for _, b := range r.rows {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryRepo) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, b := range r.rows {
		if b.AccountID == accountID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}
