package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only; these records are not exposed to tenant users.
// Callers treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogSyncRun records the outcome of one sync pass. System-scoped: sync runs
// span every account, so AccountID stays empty.
func (s *Service) LogSyncRun(ctx context.Context, saved, skipped, processed int, runErr error) error {
	msg := "sync completed"
	if runErr != nil {
		msg = "sync failed: " + runErr.Error()
	}
	return s.Append(ctx, Event{
		Type:     EventTypeSyncRun,
		Message:  msg,
		Metadata: fmt.Sprintf(`{"saved":%d,"skipped":%d,"processed":%d}`, saved, skipped, processed),
	})
}

// LogBindingChange records create/update/delete of a phone number binding.
func (s *Service) LogBindingChange(ctx context.Context, typ EventType, accountID, actorUserID, actorRole, bindingID, message string) error {
	return s.Append(ctx, Event{
		AccountID:   accountID,
		Type:        typ,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		BindingID:   bindingID,
		Message:     message,
	})
}

// LogAccountDeleted records the identity-driven account removal, including
// how many bindings the cascade removed.
func (s *Service) LogAccountDeleted(ctx context.Context, accountID string, cascadedBindings int) error {
	return s.Append(ctx, Event{
		AccountID: accountID,
		Type:      EventTypeAccountDeleted,
		Message:   "account removed by identity provider",
		Metadata:  fmt.Sprintf(`{"cascaded_bindings":%d}`, cascadedBindings),
	})
}

// LogTestData records seeding or purging of synthetic call records.
func (s *Service) LogTestData(ctx context.Context, typ EventType, accountID, actorUserID, actorRole string, count int) error {
	return s.Append(ctx, Event{
		AccountID:   accountID,
		Type:        typ,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		Metadata:    fmt.Sprintf(`{"count":%d}`, count),
	})
}
