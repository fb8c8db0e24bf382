package callrecords

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This repository assumes the following table exists:
//
// call_records (
//   id TEXT PRIMARY KEY,
//   account_id TEXT NOT NULL,
//   conversation_id TEXT NOT NULL,
//   agent_id TEXT NOT NULL,
//   agent_name TEXT NOT NULL,
//   start_time BIGINT NOT NULL,
//   duration_seconds INT NOT NULL,
//   outcome TEXT NOT NULL,
//   customer_phone_number TEXT NOT NULL DEFAULT '',
//   created_at TIMESTAMPTZ NOT NULL,
//   updated_at TIMESTAMPTZ NOT NULL
// )
// with UNIQUE (account_id, conversation_id) as the sync idempotency backstop,
// plus indexes on (account_id, start_time DESC, id DESC) for paging and on
// start_time for the high-water-mark query.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, rec CallRecord) error {
	const q = `
INSERT INTO call_records (
  id, account_id, conversation_id, agent_id, agent_name,
  start_time, duration_seconds, outcome, customer_phone_number,
  created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.AccountID,
		rec.ConversationID,
		rec.AgentID,
		rec.AgentName,
		rec.StartTime,
		rec.DurationSeconds,
		rec.Outcome,
		rec.CustomerPhoneNumber,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *PostgresRepo) ExistsConversation(ctx context.Context, accountID, conversationID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM call_records WHERE account_id = $1 AND conversation_id = $2
)
`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, accountID, conversationID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepo) MaxStartTime(ctx context.Context) (int64, bool, error) {
	const q = `SELECT start_time FROM call_records ORDER BY start_time DESC LIMIT 1`
	var ts int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

func (r *PostgresRepo) ListByAccount(ctx context.Context, accountID string, limit int, cursor string) (Page, error) {
	if limit <= 0 {
		limit = 50
	}

	// Fetch one extra row to decide has_more without a COUNT.
	var (
		rows *sql.Rows
		err  error
	)
	if cursor == "" {
		const q = `
SELECT id, account_id, conversation_id, agent_id, agent_name,
       start_time, duration_seconds, outcome, customer_phone_number,
       created_at, updated_at
FROM call_records
WHERE account_id = $1
ORDER BY start_time DESC, id DESC
LIMIT $2
`
		rows, err = r.db.QueryContext(ctx, q, accountID, limit+1)
	} else {
		ts, id, cerr := decodeCursor(cursor)
		if cerr != nil {
			return Page{}, cerr
		}
		const q = `
SELECT id, account_id, conversation_id, agent_id, agent_name,
       start_time, duration_seconds, outcome, customer_phone_number,
       created_at, updated_at
FROM call_records
WHERE account_id = $1 AND (start_time, id) < ($2, $3)
ORDER BY start_time DESC, id DESC
LIMIT $4
`
		rows, err = r.db.QueryContext(ctx, q, accountID, ts, id, limit+1)
	}
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0, limit)
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.AccountID,
			&rec.ConversationID,
			&rec.AgentID,
			&rec.AgentName,
			&rec.StartTime,
			&rec.DurationSeconds,
			&rec.Outcome,
			&rec.CustomerPhoneNumber,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return Page{}, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	page := Page{Records: out}
	if len(out) > limit {
		page.Records = out[:limit]
		last := page.Records[limit-1]
		page.HasMore = true
		page.NextCursor = encodeCursor(last.StartTime, last.ID)
	}
	return page, nil
}

func (r *PostgresRepo) GetByConversation(ctx context.Context, accountID, conversationID string) (CallRecord, error) {
	const q = `
SELECT id, account_id, conversation_id, agent_id, agent_name,
       start_time, duration_seconds, outcome, customer_phone_number,
       created_at, updated_at
FROM call_records
WHERE account_id = $1 AND conversation_id = $2
`
	var rec CallRecord
	if err := r.db.QueryRowContext(ctx, q, accountID, conversationID).Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.ConversationID,
		&rec.AgentID,
		&rec.AgentName,
		&rec.StartTime,
		&rec.DurationSeconds,
		&rec.Outcome,
		&rec.CustomerPhoneNumber,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, ErrNotFound
		}
		return CallRecord{}, err
	}
	return rec, nil
}

func (r *PostgresRepo) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	const q = `DELETE FROM call_records WHERE account_id = $1`
	res, err := r.db.ExecContext(ctx, q, accountID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
