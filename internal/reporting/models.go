package reporting

// TimeRange bounds a report in epoch seconds, half-open: [From, To).
type TimeRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics.
// Account isolation: AccountID is required.
type CallsSummaryRequest struct {
	AccountID string    `json:"account_id"`
	Range     TimeRange `json:"range"`
}

// CallsSummary aggregates one account's calls over a range.
type CallsSummary struct {
	AccountID string    `json:"account_id"`
	Range     TimeRange `json:"range"`

	TotalCalls   int `json:"total_calls"`
	SuccessCalls int `json:"success_calls"`
	FailureCalls int `json:"failure_calls"`
	UnknownCalls int `json:"unknown_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	DistinctAgents int `json:"distinct_agents"`
}
