package callrecords

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"
)

func newTestService(repo Repository) *Service {
	s := NewService(repo)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	s.rng = rand.New(rand.NewSource(1))
	return s
}

func TestInsert_RejectsDuplicateConversationPerAccount(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1700000000, 0).UTC()

	rec := CallRecord{ID: "r1", AccountID: "acct-1", ConversationID: "conv-1", StartTime: 1000, CreatedAt: now, UpdatedAt: now}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := rec
	dup.ID = "r2"
	if err := repo.Insert(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same conversation under a different account is a different call record.
	other := rec
	other.ID = "r3"
	other.AccountID = "acct-2"
	if err := repo.Insert(context.Background(), other); err != nil {
		t.Fatalf("insert for other account: %v", err)
	}
}

func TestMaxStartTime(t *testing.T) {
	repo := NewMemoryRepo()
	if _, ok, err := repo.MaxStartTime(context.Background()); err != nil || ok {
		t.Fatalf("expected no high-water mark on empty store, got ok=%v err=%v", ok, err)
	}

	for i, ts := range []int64{500, 2000, 1000} {
		rec := CallRecord{ID: string(rune('a' + i)), AccountID: "acct-1", ConversationID: string(rune('x' + i)), StartTime: ts}
		if err := repo.Insert(context.Background(), rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	ts, ok, err := repo.MaxStartTime(context.Background())
	if err != nil || !ok {
		t.Fatalf("unexpected: ok=%v err=%v", ok, err)
	}
	if ts != 2000 {
		t.Fatalf("expected 2000, got %d", ts)
	}
}

func TestListByAccount_CursorPagination(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)

	if _, err := svc.SeedTestCalls(context.Background(), "acct-1", SeedRequest{Count: 7, SecondsBetweenCalls: 600}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.SeedTestCalls(context.Background(), "acct-2", SeedRequest{Count: 3}); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.ListByAccount(context.Background(), "acct-1", 3, cursor)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var prev int64 = 1 << 62
		for _, rec := range page.Records {
			if rec.AccountID != "acct-1" {
				t.Fatalf("foreign account leaked into page: %+v", rec)
			}
			if rec.StartTime > prev {
				t.Fatalf("records not newest-first: %d after %d", rec.StartTime, prev)
			}
			prev = rec.StartTime
			if seen[rec.ID] {
				t.Fatalf("record %s repeated across pages", rec.ID)
			}
			seen[rec.ID] = true
		}
		pages++
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 records across pages, got %d", len(seen))
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
}

func TestListByAccount_RejectsGarbageCursor(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)
	if _, err := svc.ListByAccount(context.Background(), "acct-1", 10, "!!not-base64!!"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestPurgeByAccount_OnlyRemovesOwnRecords(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)

	if _, err := svc.SeedTestCalls(context.Background(), "acct-1", SeedRequest{Count: 4}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.SeedTestCalls(context.Background(), "acct-2", SeedRequest{Count: 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	n, err := svc.PurgeByAccount(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 purged, got %d", n)
	}
	page, _ := svc.ListByAccount(context.Background(), "acct-2", 10, "")
	if len(page.Records) != 2 {
		t.Fatalf("expected acct-2 records untouched, got %d", len(page.Records))
	}
}
