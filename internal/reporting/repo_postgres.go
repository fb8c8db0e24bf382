package reporting

import (
	"context"
	"database/sql"

	"callboard/internal/callrecords"
)

// PostgresRepo reads reports from the call_records table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListCalls(ctx context.Context, accountID string, from, to int64) ([]callrecords.CallRecord, error) {
	const q = `
SELECT id, account_id, conversation_id, agent_id, agent_name,
       start_time, duration_seconds, outcome, customer_phone_number,
       created_at, updated_at
FROM call_records
WHERE account_id = $1 AND start_time >= $2 AND start_time < $3
ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, q, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]callrecords.CallRecord, 0)
	for rows.Next() {
		var rec callrecords.CallRecord
		err := rows.Scan(
			&rec.ID, &rec.AccountID, &rec.ConversationID, &rec.AgentID, &rec.AgentName,
			&rec.StartTime, &rec.DurationSeconds, &rec.Outcome, &rec.CustomerPhoneNumber,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
