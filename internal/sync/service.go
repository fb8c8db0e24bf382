package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"callboard/internal/bindings"
	"callboard/internal/callrecords"
	"callboard/internal/convai"
	"callboard/pkg/logger"

	"github.com/google/uuid"
)

// Service pulls new calls from the conversational-AI provider, attributes
// each to the account that owns the answering agent, and persists only the
// calls not already stored.
//
// Dedup is two-phase:
//  1. A global time cutoff: one day past the most recent stored start time.
//     Calls at or before the cutoff are not even considered, so steady-state
//     runs never re-scan full history.
//  2. A per-account conversation-id lookup for everything past the cutoff.
//
// The engine holds no state between runs; the record store is the only
// durable cursor.
type Service struct {
	provider convai.Provider
	resolver AgentResolver
	records  RecordStore
	lock     Locker
	auditor  Auditor
	clock    func() time.Time
}

// AgentResolver maps a provider agent id to its owning account.
// bindings.ErrNotFound means the agent is unbound; that call is expected
// noise, not a fault.
type AgentResolver interface {
	ResolveAccountByAgent(ctx context.Context, agentID string) (string, error)
}

// RecordStore is the slice of the call-record repository the engine needs.
type RecordStore interface {
	MaxStartTime(ctx context.Context) (int64, bool, error)
	ExistsConversation(ctx context.Context, accountID, conversationID string) (bool, error)
	Insert(ctx context.Context, rec callrecords.CallRecord) error
}

// Locker serializes runs system-wide. Optional; the store's uniqueness
// constraint keeps overlapping runs correct even without it, the lock just
// avoids wasted provider fetches.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Auditor records the outcome of each run. Best-effort.
type Auditor interface {
	LogSyncRun(ctx context.Context, saved, skipped, processed int, runErr error) error
}

// Result reports what one run did.
type Result struct {
	SavedCount     int `json:"saved_count"`
	SkippedCount   int `json:"skipped_count"`
	ProcessedCount int `json:"processed_count"`
}

var (
	// ErrProviderNotConfigured aborts the run before any fetch.
	ErrProviderNotConfigured = errors.New("sync: provider credential not configured")
	// ErrAlreadyRunning means another run holds the single-flight lock.
	ErrAlreadyRunning = errors.New("sync: a sync run is already in progress")
)

// overlapMarginSecs pushes the cutoff one full day past the most recent
// stored call to tolerate provider clock skew and out-of-order listings.
// Tradeoff: a never-seen call with a start time at or before the cutoff is
// skipped forever; freshly completed calls are assumed to carry timestamps
// close to "now".
const overlapMarginSecs = 24 * 60 * 60

func NewService(provider convai.Provider, resolver AgentResolver, records RecordStore) *Service {
	return &Service{
		provider: provider,
		resolver: resolver,
		records:  records,
		clock:    time.Now,
	}
}

// WithLock enables system-wide single-flight serialization.
func (s *Service) WithLock(l Locker) *Service {
	s.lock = l
	return s
}

// WithAuditor enables best-effort run auditing.
func (s *Service) WithAuditor(a Auditor) *Service {
	s.auditor = a
	return s
}

// Run executes one sync pass. A per-call failure never aborts the run; it is
// logged and counted as skipped. Only the upfront configuration check and a
// failed provider listing abort.
func (s *Service) Run(ctx context.Context) (Result, error) {
	log := logger.From(ctx)

	if s.provider == nil || !s.provider.Configured() {
		return Result{}, ErrProviderNotConfigured
	}

	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrAlreadyRunning
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("sync lock release failed", "err", err)
			}
		}()
	}

	res, err := s.run(ctx, log)
	if s.auditor != nil {
		if aerr := s.auditor.LogSyncRun(ctx, res.SavedCount, res.SkippedCount, res.ProcessedCount, err); aerr != nil {
			log.Warn("sync audit failed", "err", aerr)
		}
	}
	return res, err
}

func (s *Service) run(ctx context.Context, log *slog.Logger) (Result, error) {
	cutoff, err := s.cutoff(ctx)
	if err != nil {
		return Result{}, err
	}

	all, err := s.provider.ListCalls(ctx)
	if err != nil {
		return Result{}, err
	}

	// The provider gives no server-side time filter; keep only calls
	// strictly past the cutoff.
	candidates := all[:0:0]
	for _, c := range all {
		if c.StartTime > cutoff {
			candidates = append(candidates, c)
		}
	}

	res := Result{ProcessedCount: len(candidates)}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		switch s.syncOne(ctx, log, c) {
		case outcomeSaved:
			res.SavedCount++
		case outcomeSkipped:
			res.SkippedCount++
		case outcomeUnattributed:
			// counted in ProcessedCount only
		}
	}

	log.Info("sync completed",
		"saved", res.SavedCount,
		"skipped", res.SkippedCount,
		"processed", res.ProcessedCount,
		"cutoff", cutoff,
	)
	return res, nil
}

// cutoff computes the global high-water mark plus the overlap margin.
// An empty store means "process all history".
func (s *Service) cutoff(ctx context.Context) (int64, error) {
	hwm, ok, err := s.records.MaxStartTime(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return hwm + overlapMarginSecs, nil
}

type callOutcome int

const (
	outcomeSaved callOutcome = iota
	outcomeSkipped
	outcomeUnattributed
)

func (s *Service) syncOne(ctx context.Context, log *slog.Logger, c convai.CallSummary) callOutcome {
	accountID, err := s.resolver.ResolveAccountByAgent(ctx, c.AgentID)
	if err != nil {
		if errors.Is(err, bindings.ErrNotFound) {
			// Unbound agent: expected noise, not a fault. Logged for
			// observability rather than silently dropped.
			log.Debug("call skipped: no binding for agent",
				"agent_id", c.AgentID,
				"conversation_id", c.ConversationID,
			)
			return outcomeUnattributed
		}
		log.Error("agent resolution failed",
			"agent_id", c.AgentID,
			"conversation_id", c.ConversationID,
			"err", err,
		)
		return outcomeSkipped
	}

	exists, err := s.records.ExistsConversation(ctx, accountID, c.ConversationID)
	if err != nil {
		log.Error("dedup lookup failed", "conversation_id", c.ConversationID, "err", err)
		return outcomeSkipped
	}
	if exists {
		return outcomeSkipped
	}

	now := s.clock().UTC()
	agentName := c.AgentName
	if agentName == "" {
		agentName = "Unknown Agent"
	}
	rec := callrecords.CallRecord{
		ID:                  uuid.NewString(),
		AccountID:           accountID,
		ConversationID:      c.ConversationID,
		AgentID:             c.AgentID,
		AgentName:           agentName,
		StartTime:           c.StartTime,
		DurationSeconds:     c.DurationSeconds,
		Outcome:             callrecords.NormalizeOutcome(c.CallSuccessful),
		CustomerPhoneNumber: c.CustomerPhoneNumber,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		if errors.Is(err, callrecords.ErrDuplicate) {
			// A concurrent run won the race; the record exists, which is
			// all that matters.
			return outcomeSkipped
		}
		log.Error("call record insert failed", "conversation_id", c.ConversationID, "err", err)
		return outcomeSkipped
	}
	return outcomeSaved
}
