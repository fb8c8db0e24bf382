package bindings

import "time"

// Binding associates one phone number and one provider agent id with exactly
// one account.
//
// Uniqueness invariants (enforced globally, across all accounts):
// - phone_number is unique across all bindings
// - agent_id is unique across all bindings (at most one account per agent)
//
// The agent_id index is what lets the sync engine attribute an incoming call
// to its owning account.
type Binding struct {
	ID        string `json:"id" db:"id"`
	AccountID string `json:"account_id" db:"account_id"`

	// PhoneNumber is E.164 (e.g. +15551234567).
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	// AgentID is the conversational-AI provider's agent identifier.
	AgentID string `json:"agent_id" db:"agent_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
