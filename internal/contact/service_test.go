package contact

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestService() *Service {
	s := NewService(NewMemoryRepo())
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return s
}

func TestSubmit_StoresTrimmedMessage(t *testing.T) {
	s := newTestService()

	m, err := s.Submit(context.Background(), "  Ada  ", " ada@shop.example ", "Shop Co", "  hello  ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.ID == "" {
		t.Fatal("expected generated id")
	}
	if m.Name != "Ada" || m.Email != "ada@shop.example" || m.Body != "hello" {
		t.Fatalf("inputs not trimmed: %+v", m)
	}
	if m.CreatedAt != time.Unix(1700000000, 0).UTC() {
		t.Fatalf("unexpected timestamp: %v", m.CreatedAt)
	}

	got, err := s.List(context.Background(), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected 1 stored message, got %d (%v)", len(got), err)
	}
}

func TestSubmit_RequiresNameAndEmail(t *testing.T) {
	s := newTestService()

	cases := []struct{ name, email string }{
		{"", "a@b.example"},
		{"Ada", ""},
		{"   ", "a@b.example"},
		{"Ada", "not-an-email"},
	}
	for _, tc := range cases {
		if _, err := s.Submit(context.Background(), tc.name, tc.email, "", "hi"); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("expected ErrInvalidMessage for %+v, got %v", tc, err)
		}
	}
}

func TestSubmit_TruncatesOversizedBody(t *testing.T) {
	s := newTestService()

	m, err := s.Submit(context.Background(), "Ada", "a@b.example", "", strings.Repeat("x", maxBodyLen+500))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(m.Body) != maxBodyLen {
		t.Fatalf("expected body capped at %d, got %d", maxBodyLen, len(m.Body))
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestService()
	for i, name := range []string{"first", "second", "third"} {
		when := time.Unix(1700000000+int64(i), 0).UTC()
		s.clock = func() time.Time { return when }
		if _, err := s.Submit(context.Background(), name, "a@b.example", "", ""); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}

	got, err := s.List(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "third" || got[1].Name != "second" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
