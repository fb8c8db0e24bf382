package convai

import (
	"context"
	"errors"
)

// Provider defines the provider-agnostic interface to the conversational-AI
// service that answers calls on behalf of store owners.
//
// Rules:
// - No provider HTTP calls outside this package's adapters.
// - Keep request/response types provider-agnostic; callers must not depend
//   on the upstream wire format.
type Provider interface {
	Name() string

	// Configured reports whether the upstream credential is present. A
	// missing credential is a fatal configuration error for any operation
	// that would reach the provider.
	Configured() bool

	// ListCalls returns summaries for all calls the provider currently
	// exposes, following upstream pagination to exhaustion. No server-side
	// time filtering is assumed; callers filter in-process.
	ListCalls(ctx context.Context) ([]CallSummary, error)

	// GetCallDetail fetches status, transcript and analysis for one call.
	GetCallDetail(ctx context.Context, conversationID string) (CallDetail, error)

	// GetCallAudio fetches the full audio payload for one call, buffered.
	GetCallAudio(ctx context.Context, conversationID string) ([]byte, error)
}

var (
	// ErrNotConfigured means the provider API key is missing.
	ErrNotConfigured = errors.New("convai: api key not configured")
	// ErrNotFound means the provider does not know the conversation.
	ErrNotFound = errors.New("convai: conversation not found")
	// ErrUpstream wraps non-2xx provider responses.
	ErrUpstream = errors.New("convai: upstream request failed")
)

// CallSummary is one entry from the provider's call listing.
type CallSummary struct {
	ConversationID string `json:"conversation_id"`
	AgentID        string `json:"agent_id"`
	AgentName      string `json:"agent_name,omitempty"`

	// StartTime is seconds since epoch.
	StartTime       int64 `json:"start_time_unix_secs"`
	DurationSeconds int   `json:"call_duration_secs"`

	MessageCount int    `json:"message_count,omitempty"`
	Status       string `json:"status,omitempty"`

	// CallSuccessful is the provider's outcome tag: success/failure/unknown.
	CallSuccessful string `json:"call_successful,omitempty"`

	CustomerPhoneNumber string `json:"customer_phone_number,omitempty"`
}

// CallDetail is the full record for one call.
type CallDetail struct {
	ConversationID string            `json:"conversation_id"`
	Status         string            `json:"status"`
	Transcript     []TranscriptTurn  `json:"transcript"`
	Analysis       CallAnalysis      `json:"analysis"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// TranscriptTurn is one utterance in the call transcript.
type TranscriptTurn struct {
	// Role is "agent" or "user".
	Role    string `json:"role"`
	Message string `json:"message"`

	TimeInCallSecs int `json:"time_in_call_secs,omitempty"`
}

// CallAnalysis carries the provider's post-call evaluation.
type CallAnalysis struct {
	CallSuccessful    string `json:"call_successful,omitempty"`
	TranscriptSummary string `json:"transcript_summary,omitempty"`
}
