package reporting

import (
	"context"
	"errors"
	"testing"

	"callboard/internal/callrecords"
)

func seedRepo() *MemoryRepo {
	repo := NewMemoryRepo()
	repo.Calls = []callrecords.CallRecord{
		{ID: "1", AccountID: "acct-1", AgentID: "agent-1", StartTime: 100, DurationSeconds: 60, Outcome: callrecords.OutcomeSuccess},
		{ID: "2", AccountID: "acct-1", AgentID: "agent-1", StartTime: 200, DurationSeconds: 120, Outcome: callrecords.OutcomeFailure},
		{ID: "3", AccountID: "acct-1", AgentID: "agent-2", StartTime: 300, DurationSeconds: 30, Outcome: callrecords.OutcomeUnknown},
		// Outside the queried range.
		{ID: "4", AccountID: "acct-1", AgentID: "agent-1", StartTime: 5000, DurationSeconds: 600, Outcome: callrecords.OutcomeSuccess},
		// Another tenant.
		{ID: "5", AccountID: "acct-2", AgentID: "agent-9", StartTime: 150, DurationSeconds: 45, Outcome: callrecords.OutcomeSuccess},
	}
	return repo
}

func TestCallsSummary_Aggregates(t *testing.T) {
	s := NewService(seedRepo())

	got, err := s.CallsSummary(context.Background(), CallsSummaryRequest{
		AccountID: "acct-1",
		Range:     TimeRange{From: 0, To: 1000},
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if got.TotalCalls != 3 {
		t.Fatalf("expected 3 calls, got %d", got.TotalCalls)
	}
	if got.SuccessCalls != 1 || got.FailureCalls != 1 || got.UnknownCalls != 1 {
		t.Fatalf("unexpected outcome split: %+v", got)
	}
	if got.TotalDurationSeconds != 210 || got.AverageDurationSeconds != 70 {
		t.Fatalf("unexpected durations: %+v", got)
	}
	if got.DistinctAgents != 2 {
		t.Fatalf("expected 2 distinct agents, got %d", got.DistinctAgents)
	}
}

func TestCallsSummary_RangeIsHalfOpen(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Calls = []callrecords.CallRecord{
		{ID: "1", AccountID: "acct-1", StartTime: 100, Outcome: callrecords.OutcomeSuccess},
		{ID: "2", AccountID: "acct-1", StartTime: 200, Outcome: callrecords.OutcomeSuccess},
	}
	s := NewService(repo)

	got, err := s.CallsSummary(context.Background(), CallsSummaryRequest{
		AccountID: "acct-1",
		Range:     TimeRange{From: 100, To: 200},
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalCalls != 1 {
		t.Fatalf("expected [from, to) semantics, got %d calls", got.TotalCalls)
	}
}

func TestCallsSummary_EmptyRangeIsZeroValued(t *testing.T) {
	s := NewService(NewMemoryRepo())

	got, err := s.CallsSummary(context.Background(), CallsSummaryRequest{
		AccountID: "acct-1",
		Range:     TimeRange{From: 0, To: 1000},
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalCalls != 0 || got.AverageDurationSeconds != 0 {
		t.Fatalf("expected empty summary, got %+v", got)
	}
}

func TestCallsSummary_ValidatesRequest(t *testing.T) {
	s := NewService(NewMemoryRepo())

	cases := []CallsSummaryRequest{
		{AccountID: "", Range: TimeRange{From: 0, To: 100}},
		{AccountID: "acct-1", Range: TimeRange{From: 100, To: 100}},
		{AccountID: "acct-1", Range: TimeRange{From: 200, To: 100}},
		{AccountID: "acct-1", Range: TimeRange{From: -5, To: 100}},
	}
	for _, req := range cases {
		if _, err := s.CallsSummary(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest for %+v, got %v", req, err)
		}
	}
}
