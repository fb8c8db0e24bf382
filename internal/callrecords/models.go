package callrecords

import "time"

// CallRecord is one completed AI-handled phone call, attributed to the
// account that owns the answering agent.
//
// Invariants:
// - (account_id, conversation_id) is unique; the same call is never stored
//   twice for the same account.
// - Records are immutable after insert except for updated_at bookkeeping;
//   they are only ever removed by an account-scoped purge.
type CallRecord struct {
	ID        string `json:"id" db:"id"`
	AccountID string `json:"account_id" db:"account_id"`

	// ConversationID is the provider's unique id for this call.
	ConversationID string `json:"conversation_id" db:"conversation_id"`

	AgentID   string `json:"agent_id" db:"agent_id"`
	AgentName string `json:"agent_name" db:"agent_name"`

	// StartTime is seconds since epoch, as reported by the provider.
	StartTime       int64 `json:"start_time" db:"start_time"`
	DurationSeconds int   `json:"duration" db:"duration_seconds"`

	Outcome Outcome `json:"outcome" db:"outcome"`

	CustomerPhoneNumber string `json:"customer_phone_number,omitempty" db:"customer_phone_number"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Outcome is the provider's success tag for a call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// NormalizeOutcome maps arbitrary provider values onto the closed set.
func NormalizeOutcome(v string) Outcome {
	switch Outcome(v) {
	case OutcomeSuccess, OutcomeFailure:
		return Outcome(v)
	default:
		return OutcomeUnknown
	}
}

// Page is one cursor-delimited slice of an account's calls, newest first.
type Page struct {
	Records    []CallRecord `json:"records"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}
