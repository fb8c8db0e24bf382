package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("accounts: not found")
	ErrInvalidArgument = errors.New("accounts: invalid argument")
)

// Repository is the persistence contract for accounts.
type Repository interface {
	Insert(ctx context.Context, a Account) error
	Update(ctx context.Context, a Account) error
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (Account, error)
	GetByExternalID(ctx context.Context, externalID string) (Account, error)
}

// BindingCascade is the slice of the binding index the account lifecycle
// needs: removing everything an account owns when the account goes away.
type BindingCascade interface {
	DeleteByAccount(ctx context.Context, accountID string) (int, error)
}

// Service applies identity-provider lifecycle events to the account store.
type Service struct {
	repo     Repository
	bindings BindingCascade
	clock    func() time.Time
}

func NewService(repo Repository, bindings BindingCascade) *Service {
	return &Service{repo: repo, bindings: bindings, clock: time.Now}
}

// UpsertFromIdentity creates or updates the account for an identity-provider
// user. Both the created and updated webhook events land here.
func (s *Service) UpsertFromIdentity(ctx context.Context, externalID, email string, isActive bool) (Account, error) {
	if externalID == "" {
		return Account{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	existing, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		existing.Email = email
		existing.IsActive = isActive
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Account{}, err
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	a := Account{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Email:      email,
		IsActive:   isActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// DeleteFromIdentity removes the account for a deleted identity and cascades
// to its phone-number bindings. Call records are preserved. Unknown external
// ids are a no-op: the identity provider may replay deletions.
func (s *Service) DeleteFromIdentity(ctx context.Context, externalID string) (deletedBindings int, err error) {
	if externalID == "" {
		return 0, ErrInvalidArgument
	}

	a, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	n, err := s.bindings.DeleteByAccount(ctx, a.ID)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return n, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	if id == "" {
		return Account{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (Account, error) {
	if externalID == "" {
		return Account{}, ErrInvalidArgument
	}
	return s.repo.GetByExternalID(ctx, externalID)
}
