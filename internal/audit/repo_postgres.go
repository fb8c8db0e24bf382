package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends to the audit_events table. INSERT-only; retention is
// an operational concern, not an API.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events
  (id, account_id, type, actor_user_id, actor_role, binding_id, conversation_id, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, nullable(e.AccountID), string(e.Type), e.ActorUserID, e.ActorRole,
		e.BindingID, e.ConversationID, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
