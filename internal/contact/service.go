package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("contact: name and email are required")

// maxBodyLen keeps the public form from becoming a free blob store.
const maxBodyLen = 10000

type Repository interface {
	Insert(ctx context.Context, m Message) error
	List(ctx context.Context, limit int) ([]Message, error)
}

// Service accepts public contact form submissions. The endpoint is
// unauthenticated, so validation is strict and inputs are trimmed.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Submit(ctx context.Context, name, email, company, body string) (Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Message{}, ErrInvalidMessage
	}
	if !strings.Contains(email, "@") {
		return Message{}, ErrInvalidMessage
	}
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}

	m := Message{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Company:   strings.TrimSpace(company),
		Body:      strings.TrimSpace(body),
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// List returns the most recent messages, for operator review.
func (s *Service) List(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}
