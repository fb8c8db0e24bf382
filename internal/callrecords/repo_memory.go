package callrecords

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory call record repository for tests and
// early development. It enforces the (account, conversation) uniqueness
// invariant the same way the Postgres unique index does.
type MemoryRepo struct {
	mu   sync.Mutex
	rows []CallRecord
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, rec CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.rows {
		if ex.AccountID == rec.AccountID && ex.ConversationID == rec.ConversationID {
			return ErrDuplicate
		}
	}
	r.rows = append(r.rows, rec)
	return nil
}

func (r *MemoryRepo) ExistsConversation(ctx context.Context, accountID, conversationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.rows {
		if ex.AccountID == accountID && ex.ConversationID == conversationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) MaxStartTime(ctx context.Context) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rows) == 0 {
		return 0, false, nil
	}
	max := r.rows[0].StartTime
	for _, ex := range r.rows[1:] {
		if ex.StartTime > max {
			max = ex.StartTime
		}
	}
	return max, true, nil
}

func (r *MemoryRepo) ListByAccount(ctx context.Context, accountID string, limit int, cursor string) (Page, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	owned := make([]CallRecord, 0)
	for _, ex := range r.rows {
		if ex.AccountID == accountID {
			owned = append(owned, ex)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].StartTime != owned[j].StartTime {
			return owned[i].StartTime > owned[j].StartTime
		}
		return owned[i].ID > owned[j].ID
	})

	start := 0
	if cursor != "" {
		ts, id, err := decodeCursor(cursor)
		if err != nil {
			return Page{}, err
		}
		for i, ex := range owned {
			if ex.StartTime < ts || (ex.StartTime == ts && ex.ID < id) {
				start = i
				break
			}
			start = len(owned)
		}
	}

	end := start + limit
	if end > len(owned) {
		end = len(owned)
	}
	page := Page{Records: owned[start:end]}
	if end < len(owned) {
		last := owned[end-1]
		page.HasMore = true
		page.NextCursor = encodeCursor(last.StartTime, last.ID)
	}
	return page, nil
}

func (r *MemoryRepo) GetByConversation(ctx context.Context, accountID, conversationID string) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.rows {
		if ex.AccountID == accountID && ex.ConversationID == conversationID {
			return ex, nil
		}
	}
	return CallRecord{}, ErrNotFound
}

func (r *MemoryRepo) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	n := 0
	for _, ex := range r.rows {
		if ex.AccountID == accountID {
			n++
			continue
		}
		kept = append(kept, ex)
	}
	r.rows = kept
	return n, nil
}

// All returns a copy of every stored record; test helper.
func (r *MemoryRepo) All() []CallRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallRecord, len(r.rows))
	copy(out, r.rows)
	return out
}
