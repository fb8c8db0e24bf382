package convai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"callboard/internal/config"
)

// Client talks to the provider's REST API.
//
// Listing follows upstream cursor pagination until exhaustion; audio is
// buffered whole before returning (the audio relay needs the total size for
// range responses anyway).
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

const apiKeyHeader = "xi-api-key"

// maxListPages caps cursor-following so a misbehaving upstream cannot spin
// the sync loop forever.
const maxListPages = 100

func NewClient(cfg config.ProviderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "convai" }

func (c *Client) Configured() bool { return c.apiKey != "" }

// listResponse is the provider wire format for one listing page.
type listResponse struct {
	Conversations []wireSummary `json:"conversations"`
	HasMore       bool          `json:"has_more"`
	NextCursor    string        `json:"next_cursor"`
}

type wireSummary struct {
	ConversationID      string `json:"conversation_id"`
	AgentID             string `json:"agent_id"`
	AgentName           string `json:"agent_name"`
	StartTimeUnixSecs   int64  `json:"start_time_unix_secs"`
	CallDurationSecs    int    `json:"call_duration_secs"`
	MessageCount        int    `json:"message_count"`
	Status              string `json:"status"`
	CallSuccessful      string `json:"call_successful"`
	CustomerPhoneNumber string `json:"customer_phone_number"`
}

func (c *Client) ListCalls(ctx context.Context) ([]CallSummary, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	out := make([]CallSummary, 0)
	cursor := ""
	for page := 0; page < maxListPages; page++ {
		endpoint := c.baseURL + "/v1/convai/conversations"
		if cursor != "" {
			endpoint += "?cursor=" + url.QueryEscape(cursor)
		}

		var resp listResponse
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}
		for _, w := range resp.Conversations {
			out = append(out, CallSummary{
				ConversationID:      w.ConversationID,
				AgentID:             w.AgentID,
				AgentName:           w.AgentName,
				StartTime:           w.StartTimeUnixSecs,
				DurationSeconds:     w.CallDurationSecs,
				MessageCount:        w.MessageCount,
				Status:              w.Status,
				CallSuccessful:      w.CallSuccessful,
				CustomerPhoneNumber: w.CustomerPhoneNumber,
			})
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return out, nil
}

type wireDetail struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	Transcript     []struct {
		Role           string `json:"role"`
		Message        string `json:"message"`
		TimeInCallSecs int    `json:"time_in_call_secs"`
	} `json:"transcript"`
	Analysis struct {
		CallSuccessful    string `json:"call_successful"`
		TranscriptSummary string `json:"transcript_summary"`
	} `json:"analysis"`
	Metadata map[string]string `json:"metadata"`
}

func (c *Client) GetCallDetail(ctx context.Context, conversationID string) (CallDetail, error) {
	if !c.Configured() {
		return CallDetail{}, ErrNotConfigured
	}
	if conversationID == "" {
		return CallDetail{}, fmt.Errorf("%w: empty conversation id", ErrNotFound)
	}

	var w wireDetail
	endpoint := c.baseURL + "/v1/convai/conversations/" + url.PathEscape(conversationID)
	if err := c.getJSON(ctx, endpoint, &w); err != nil {
		return CallDetail{}, err
	}

	d := CallDetail{
		ConversationID: conversationID,
		Status:         w.Status,
		Analysis: CallAnalysis{
			CallSuccessful:    w.Analysis.CallSuccessful,
			TranscriptSummary: w.Analysis.TranscriptSummary,
		},
		Metadata: w.Metadata,
	}
	if w.ConversationID != "" {
		d.ConversationID = w.ConversationID
	}
	for _, t := range w.Transcript {
		d.Transcript = append(d.Transcript, TranscriptTurn{
			Role:           t.Role,
			Message:        t.Message,
			TimeInCallSecs: t.TimeInCallSecs,
		})
	}
	return d, nil
}

func (c *Client) GetCallAudio(ctx context.Context, conversationID string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if conversationID == "" {
		return nil, fmt.Errorf("%w: empty conversation id", ErrNotFound)
	}

	endpoint := c.baseURL + "/v1/convai/conversations/" + url.PathEscape(conversationID) + "/audio"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		// Drain a little of the body for the error message; callers only log it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet)
	default:
		return nil
	}
}
