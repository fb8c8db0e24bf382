package contact

import "time"

// Message is one inbound support or sales inquiry from the public site.
type Message struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email" db:"email"`
	Company string `json:"company,omitempty" db:"company"`
	Body    string `json:"message" db:"body"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
