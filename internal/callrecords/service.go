package callrecords

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Service wraps the repository with the account-scoped read path used by the
// dashboard and the direct insertion path used for test scaffolding.
//
// Real records are created only by the sync engine; SeedTestCalls exists so
// staging environments can exercise the dashboard without live provider
// traffic.
type Service struct {
	repo  Repository
	clock func() time.Time
	rng   *rand.Rand
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		clock: time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Service) ListByAccount(ctx context.Context, accountID string, limit int, cursor string) (Page, error) {
	if accountID == "" {
		return Page{}, ErrInvalidArgument
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByAccount(ctx, accountID, limit, cursor)
}

func (s *Service) GetByConversation(ctx context.Context, accountID, conversationID string) (CallRecord, error) {
	if accountID == "" || conversationID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	return s.repo.GetByConversation(ctx, accountID, conversationID)
}

// SeedRequest controls synthetic record generation.
type SeedRequest struct {
	Count               int    `json:"count"`
	AgentID             string `json:"agent_id,omitempty"`
	AgentName           string `json:"agent_name,omitempty"`
	CustomerPhoneNumber string `json:"customer_phone_number,omitempty"`
	SecondsBetweenCalls int    `json:"seconds_between_calls,omitempty"`
}

const maxSeedCount = 10000

// SeedTestCalls inserts synthetic call records with spaced start times and
// random outcomes, newest first from "now".
func (s *Service) SeedTestCalls(ctx context.Context, accountID string, req SeedRequest) (int, error) {
	if accountID == "" {
		return 0, ErrInvalidArgument
	}
	count := req.Count
	if count < 0 {
		count = 0
	}
	if count > maxSeedCount {
		count = maxSeedCount
	}
	agentID := req.AgentID
	if agentID == "" {
		agentID = "test-agent"
	}
	agentName := req.AgentName
	if agentName == "" {
		agentName = "Test Agent"
	}
	spacing := req.SecondsBetweenCalls
	if spacing < 1 {
		spacing = 300
	}

	now := s.clock().UTC()
	nowSecs := now.Unix()
	outcomes := []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeUnknown}

	inserted := 0
	for i := 0; i < count; i++ {
		rec := CallRecord{
			ID:                  uuid.NewString(),
			AccountID:           accountID,
			ConversationID:      fmt.Sprintf("test-%d-%d-%s", now.UnixMilli(), i, uuid.NewString()[:8]),
			AgentID:             agentID,
			AgentName:           agentName,
			StartTime:           nowSecs - int64(i*spacing) - int64(s.rng.Intn(61)),
			DurationSeconds:     60 + s.rng.Intn(241),
			Outcome:             outcomes[s.rng.Intn(len(outcomes))],
			CustomerPhoneNumber: req.CustomerPhoneNumber,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if rec.CustomerPhoneNumber == "" {
			rec.CustomerPhoneNumber = s.randomPhone()
		}
		if err := s.repo.Insert(ctx, rec); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// PurgeByAccount bulk-deletes every record the account owns.
func (s *Service) PurgeByAccount(ctx context.Context, accountID string) (int, error) {
	if accountID == "" {
		return 0, ErrInvalidArgument
	}
	return s.repo.DeleteByAccount(ctx, accountID)
}

func (s *Service) randomPhone() string {
	digits := make([]byte, 9)
	for i := range digits {
		digits[i] = byte('0' + s.rng.Intn(10))
	}
	return string(digits)
}
