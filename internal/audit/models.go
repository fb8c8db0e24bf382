package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - account_id is empty only for system-wide events (sync runs).
// - actor capture is best-effort; do not block critical flows on audit
//   failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// AccountID scopes the event to a tenant. Empty for system events.
	AccountID string `json:"account_id,omitempty" db:"account_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if applicable).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Target identifiers (optional, depending on the event type).
	BindingID      string `json:"binding_id,omitempty" db:"binding_id"`
	ConversationID string `json:"conversation_id,omitempty" db:"conversation_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeSyncRun        EventType = "sync_run"
	EventTypeBindingCreated EventType = "binding_created"
	EventTypeBindingUpdated EventType = "binding_updated"
	EventTypeBindingDeleted EventType = "binding_deleted"
	EventTypeAccountDeleted EventType = "account_deleted"
	EventTypeTestSeed       EventType = "test_seed"
	EventTypeTestPurge      EventType = "test_purge"
)
