package reporting

import (
	"context"
	"errors"

	"callboard/internal/callrecords"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations must enforce account filtering; reports read the immutable
// call record store only.
type Repository interface {
	ListCalls(ctx context.Context, accountID string, from, to int64) ([]callrecords.CallRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.AccountID == "" {
		return CallsSummary{}, ErrInvalidRequest
	}
	if req.Range.From < 0 || req.Range.To <= req.Range.From {
		return CallsSummary{}, ErrInvalidRequest
	}

	rows, err := s.repo.ListCalls(ctx, req.AccountID, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{AccountID: req.AccountID, Range: req.Range}
	agents := make(map[string]struct{})
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.AgentID != "" {
			agents[c.AgentID] = struct{}{}
		}
		switch c.Outcome {
		case callrecords.OutcomeSuccess:
			out.SuccessCalls++
		case callrecords.OutcomeFailure:
			out.FailureCalls++
		default:
			out.UnknownCalls++
		}
	}
	out.DistinctAgents = len(agents)
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
