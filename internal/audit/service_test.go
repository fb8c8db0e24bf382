package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestService_AppendRequiresType(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Event{AccountID: "a"}); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestService_SystemEventsNeedNoAccount(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }

	if err := svc.LogSyncRun(context.Background(), 3, 1, 5, nil); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := svc.LogSyncRun(context.Background(), 0, 0, 0, errors.New("upstream down")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type != EventTypeSyncRun || evs[0].AccountID != "" {
		t.Fatalf("unexpected event: %+v", evs[0])
	}
	if evs[0].Metadata != `{"saved":3,"skipped":1,"processed":5}` {
		t.Fatalf("unexpected metadata: %s", evs[0].Metadata)
	}
	if evs[0].ID == "" || evs[0].CreatedAt != time.Unix(1700000000, 0).UTC() {
		t.Fatalf("bookkeeping not filled: %+v", evs[0])
	}
	if evs[1].Message != "sync failed: upstream down" {
		t.Fatalf("unexpected failure message: %s", evs[1].Message)
	}
}

func TestService_LogsBindingLifecycle(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	err := svc.LogBindingChange(context.Background(), EventTypeBindingCreated, "acct-1", "user-1", "owner", "b1", "bound +15551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.Type != EventTypeBindingCreated || e.AccountID != "acct-1" || e.BindingID != "b1" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.ActorUserID != "user-1" || e.ActorRole != "owner" {
		t.Fatalf("actor not captured: %+v", e)
	}
}
