package accounts

import "time"

// Account is a store owner/tenant. It mirrors the identity provider's user
// record: created and updated from lifecycle webhooks, deleted when the
// identity is deleted.
//
// Deletion cascades to the account's phone-number bindings but deliberately
// NOT to its call records; historical call data outlives the account.
type Account struct {
	ID string `json:"id" db:"id"`

	// ExternalID is the identity provider's stable user id.
	ExternalID string `json:"external_id" db:"external_id"`

	Email    string `json:"email,omitempty" db:"email"`
	IsActive bool   `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
