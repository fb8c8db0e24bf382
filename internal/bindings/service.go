package bindings

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("bindings: not found")
	ErrInvalidArgument    = errors.New("bindings: invalid argument")
	ErrInvalidPhoneNumber = errors.New("bindings: phone number must be E.164 (e.g. +1234567890)")
	ErrPhoneNumberTaken   = errors.New("bindings: phone number already bound to another account")
	ErrAgentTaken         = errors.New("bindings: agent id already bound to another account")
)

// e164 is deliberately strict: leading +, no leading zero, max 15 digits.
var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Repository is the persistence contract for the agent binding index.
//
// Implementations must back FindByAgentID with an index; the sync engine
// calls it once per fetched call.
type Repository interface {
	Insert(ctx context.Context, b Binding) error
	Update(ctx context.Context, b Binding) error
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (Binding, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (Binding, error)
	FindByAgentID(ctx context.Context, agentID string) (Binding, error)
	ListByAccount(ctx context.Context, accountID string) ([]Binding, error)

	// DeleteByAccount removes all bindings owned by an account and reports
	// how many were removed. Used by the account-deletion cascade.
	DeleteByAccount(ctx context.Context, accountID string) (int, error)
}

// Service enforces the binding invariants on top of the repository.
//
// The uniqueness checks here are advisory; the store's unique indexes are
// the backstop under concurrent writers.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Bind(ctx context.Context, accountID, phoneNumber, agentID string) (Binding, error) {
	if accountID == "" || agentID == "" {
		return Binding{}, ErrInvalidArgument
	}
	if !e164.MatchString(phoneNumber) {
		return Binding{}, ErrInvalidPhoneNumber
	}

	if _, err := s.repo.FindByPhoneNumber(ctx, phoneNumber); err == nil {
		return Binding{}, ErrPhoneNumberTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Binding{}, err
	}
	if _, err := s.repo.FindByAgentID(ctx, agentID); err == nil {
		return Binding{}, ErrAgentTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Binding{}, err
	}

	now := s.clock().UTC()
	b := Binding{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		PhoneNumber: phoneNumber,
		AgentID:     agentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, b); err != nil {
		return Binding{}, err
	}
	return b, nil
}

// Rebind changes the phone number on an existing binding. The agent id is
// immutable; re-pointing an agent means delete + bind.
func (s *Service) Rebind(ctx context.Context, bindingID, newPhoneNumber string) (Binding, error) {
	if bindingID == "" {
		return Binding{}, ErrInvalidArgument
	}
	if !e164.MatchString(newPhoneNumber) {
		return Binding{}, ErrInvalidPhoneNumber
	}

	b, err := s.repo.Get(ctx, bindingID)
	if err != nil {
		return Binding{}, err
	}

	if existing, err := s.repo.FindByPhoneNumber(ctx, newPhoneNumber); err == nil {
		if existing.ID != b.ID {
			return Binding{}, ErrPhoneNumberTaken
		}
		// No-op rebind to the same number still bumps updated_at.
	} else if !errors.Is(err, ErrNotFound) {
		return Binding{}, err
	}

	b.PhoneNumber = newPhoneNumber
	b.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, b); err != nil {
		return Binding{}, err
	}
	return b, nil
}

// ResolveAccountByAgent maps a provider agent id to its owning account.
// Returns ErrNotFound when the agent is unbound; callers decide whether that
// is an error (binding CRUD) or expected noise (sync attribution).
func (s *Service) ResolveAccountByAgent(ctx context.Context, agentID string) (string, error) {
	if agentID == "" {
		return "", ErrInvalidArgument
	}
	b, err := s.repo.FindByAgentID(ctx, agentID)
	if err != nil {
		return "", err
	}
	return b.AccountID, nil
}

func (s *Service) Get(ctx context.Context, id string) (Binding, error) {
	if id == "" {
		return Binding{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Binding, error) {
	if accountID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByAccount(ctx, accountID)
}

// Delete removes a binding owned by accountID. Ownership is checked so one
// tenant cannot delete another tenant's binding by guessing ids.
func (s *Service) Delete(ctx context.Context, accountID, id string) error {
	if accountID == "" || id == "" {
		return ErrInvalidArgument
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.AccountID != accountID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// DeleteByAccount is the account-deletion cascade entry point.
func (s *Service) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	if accountID == "" {
		return 0, ErrInvalidArgument
	}
	return s.repo.DeleteByAccount(ctx, accountID)
}
