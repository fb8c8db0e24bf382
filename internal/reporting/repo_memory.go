package reporting

import (
	"context"
	"errors"
	"sync"

	"callboard/internal/callrecords"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development. It enforces account isolation on reads.
type MemoryRepo struct {
	mu    sync.Mutex
	Calls []callrecords.CallRecord
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCalls(ctx context.Context, accountID string, from, to int64) ([]callrecords.CallRecord, error) {
	if accountID == "" {
		return nil, errors.New("account_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]callrecords.CallRecord, 0)
	for _, c := range r.Calls {
		if c.AccountID != accountID {
			continue
		}
		if c.StartTime < from || c.StartTime >= to {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
