package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"callboard/internal/bindings"
	"callboard/internal/callrecords"
	"callboard/internal/convai"
)

type fakeProvider struct {
	configured bool
	calls      []convai.CallSummary
	listErr    error
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) ListCalls(ctx context.Context) ([]convai.CallSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.calls, nil
}

func (f *fakeProvider) GetCallDetail(ctx context.Context, id string) (convai.CallDetail, error) {
	return convai.CallDetail{}, convai.ErrNotFound
}

func (f *fakeProvider) GetCallAudio(ctx context.Context, id string) ([]byte, error) {
	return nil, convai.ErrNotFound
}

type harness struct {
	svc      *Service
	provider *fakeProvider
	bindings *bindings.Service
	records  *callrecords.MemoryRepo
}

func newHarness() *harness {
	p := &fakeProvider{configured: true}
	b := bindings.NewService(bindings.NewMemoryRepo())
	r := callrecords.NewMemoryRepo()
	s := NewService(p, b, r)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return &harness{svc: s, provider: p, bindings: b, records: r}
}

func (h *harness) bind(t *testing.T, accountID, phone, agentID string) {
	t.Helper()
	if _, err := h.bindings.Bind(context.Background(), accountID, phone, agentID); err != nil {
		t.Fatalf("bind %s: %v", agentID, err)
	}
}

func (h *harness) seed(t *testing.T, accountID, conversationID string, startTime int64) {
	t.Helper()
	now := time.Unix(1690000000, 0).UTC()
	err := h.records.Insert(context.Background(), callrecords.CallRecord{
		ID:             "seed-" + conversationID,
		AccountID:      accountID,
		ConversationID: conversationID,
		AgentID:        "agent-seed",
		AgentName:      "Seed",
		StartTime:      startTime,
		Outcome:        callrecords.OutcomeUnknown,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", conversationID, err)
	}
}

func TestRun_RequiresProviderCredential(t *testing.T) {
	h := newHarness()
	h.provider.configured = false

	if _, err := h.svc.Run(context.Background()); !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}

func TestRun_EmptyStoreProcessesAllHistory(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.provider.calls = []convai.CallSummary{
		{ConversationID: "c1", AgentID: "agent-1", StartTime: 100, DurationSeconds: 60, CallSuccessful: "success"},
		{ConversationID: "c2", AgentID: "agent-1", StartTime: 500, DurationSeconds: 90, CallSuccessful: "failure"},
	}

	res, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Result{SavedCount: 2, SkippedCount: 0, ProcessedCount: 2}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}

	all := h.records.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 stored records, got %d", len(all))
	}
	for _, rec := range all {
		if rec.AccountID != "acct-1" {
			t.Fatalf("record attributed to wrong account: %+v", rec)
		}
		if rec.UpdatedAt != time.Unix(1700000000, 0).UTC() {
			t.Fatalf("expected service clock on record, got %v", rec.UpdatedAt)
		}
	}
}

func TestRun_CutoffBoundary(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.seed(t, "acct-1", "old", 1000)

	// Cutoff is 1000 + 86400; the call exactly at the cutoff is excluded,
	// one second later is included.
	h.provider.calls = []convai.CallSummary{
		{ConversationID: "at-cutoff", AgentID: "agent-1", StartTime: 1000 + 86400},
		{ConversationID: "past-cutoff", AgentID: "agent-1", StartTime: 1000 + 86401},
	}

	res, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Result{SavedCount: 1, SkippedCount: 0, ProcessedCount: 1}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}
	if _, err := h.records.GetByConversation(context.Background(), "acct-1", "past-cutoff"); err != nil {
		t.Fatalf("expected past-cutoff stored: %v", err)
	}
	if _, err := h.records.GetByConversation(context.Background(), "acct-1", "at-cutoff"); !errors.Is(err, callrecords.ErrNotFound) {
		t.Fatalf("expected at-cutoff excluded, got %v", err)
	}
}

func TestRun_UnboundAgentCountsProcessedOnly(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.provider.calls = []convai.CallSummary{
		{ConversationID: "bound", AgentID: "agent-1", StartTime: 100},
		{ConversationID: "stray", AgentID: "agent-unknown", StartTime: 200},
	}

	res, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Result{SavedCount: 1, SkippedCount: 0, ProcessedCount: 2}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}
	if len(h.records.All()) != 1 {
		t.Fatalf("stray call was persisted")
	}
}

func TestRun_DedupByConversation(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.seed(t, "acct-1", "c1", 100)
	h.provider.calls = []convai.CallSummary{
		// Same conversation re-listed within the overlap window.
		{ConversationID: "c1", AgentID: "agent-1", StartTime: 100 + 86401},
		{ConversationID: "c2", AgentID: "agent-1", StartTime: 100 + 86402},
	}

	res, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Result{SavedCount: 1, SkippedCount: 1, ProcessedCount: 2}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.provider.calls = []convai.CallSummary{
		{ConversationID: "c1", AgentID: "agent-1", StartTime: 100},
		{ConversationID: "c2", AgentID: "agent-1", StartTime: 200},
	}

	first, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.SavedCount != 2 {
		t.Fatalf("first run saved %d", first.SavedCount)
	}

	second, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	// Both listed calls fall at or before the new cutoff (200 + 86400), so
	// neither is reconsidered.
	want := Result{SavedCount: 0, SkippedCount: 0, ProcessedCount: 0}
	if second != want {
		t.Fatalf("expected no-op second run, got %+v", second)
	}
	if len(h.records.All()) != 2 {
		t.Fatalf("expected 2 records after rerun, got %d", len(h.records.All()))
	}
}

func TestRun_AttributesPerAgentAccount(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	h.bind(t, "acct-2", "+15557654321", "agent-2")
	h.provider.calls = []convai.CallSummary{
		{ConversationID: "c1", AgentID: "agent-1", StartTime: 100},
		{ConversationID: "c2", AgentID: "agent-2", StartTime: 200},
	}

	if _, err := h.svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	r1, err := h.records.GetByConversation(context.Background(), "acct-1", "c1")
	if err != nil || r1.AgentID != "agent-1" {
		t.Fatalf("c1 misattributed: %+v %v", r1, err)
	}
	r2, err := h.records.GetByConversation(context.Background(), "acct-2", "c2")
	if err != nil || r2.AgentID != "agent-2" {
		t.Fatalf("c2 misattributed: %+v %v", r2, err)
	}
}

type failingStore struct {
	*callrecords.MemoryRepo
	failConversation string
}

func (f *failingStore) Insert(ctx context.Context, rec callrecords.CallRecord) error {
	if rec.ConversationID == f.failConversation {
		return errors.New("disk on fire")
	}
	return f.MemoryRepo.Insert(ctx, rec)
}

func TestRun_ItemFailureDoesNotAbort(t *testing.T) {
	h := newHarness()
	h.bind(t, "acct-1", "+15551234567", "agent-1")
	store := &failingStore{MemoryRepo: h.records, failConversation: "c2"}
	h.svc.records = store

	h.provider.calls = []convai.CallSummary{
		{ConversationID: "c1", AgentID: "agent-1", StartTime: 100},
		{ConversationID: "c2", AgentID: "agent-1", StartTime: 200},
		{ConversationID: "c3", AgentID: "agent-1", StartTime: 300},
	}

	res, err := h.svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run aborted on item failure: %v", err)
	}
	want := Result{SavedCount: 2, SkippedCount: 1, ProcessedCount: 3}
	if res != want {
		t.Fatalf("expected %+v, got %+v", want, res)
	}
}

func TestRun_ListFailureAborts(t *testing.T) {
	h := newHarness()
	boom := errors.New("upstream down")
	h.provider.listErr = boom

	if _, err := h.svc.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected listing error surfaced, got %v", err)
	}
}

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	l.held = false
	return nil
}

func TestRun_SingleFlightLock(t *testing.T) {
	h := newHarness()
	lock := &fakeLock{held: true}
	h.svc.WithLock(lock)

	if _, err := h.svc.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if lock.releases != 0 {
		t.Fatalf("lock released without being held")
	}

	lock.held = false
	if _, err := h.svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if lock.releases != 1 {
		t.Fatalf("expected exactly one release, got %d", lock.releases)
	}
}
