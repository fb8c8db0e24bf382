package bindings

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This repository assumes the following table exists:
//
// phone_number_bindings (
//   id TEXT PRIMARY KEY,
//   account_id TEXT NOT NULL,
//   phone_number TEXT NOT NULL,
//   agent_id TEXT NOT NULL,
//   created_at TIMESTAMPTZ NOT NULL,
//   updated_at TIMESTAMPTZ NOT NULL
// )
// with UNIQUE indexes on phone_number and agent_id (global uniqueness),
// and an index on account_id for the cascade/list paths.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const uniqueViolation = "23505"

// mapUniqueViolation translates the store's unique-index errors back into the
// package's conflict sentinels, keyed by constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "agent") {
			return ErrAgentTaken
		}
		return ErrPhoneNumberTaken
	}
	return err
}

func (r *PostgresRepo) Insert(ctx context.Context, b Binding) error {
	const q = `
INSERT INTO phone_number_bindings (id, account_id, phone_number, agent_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.AccountID, b.PhoneNumber, b.AgentID, b.CreatedAt, b.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *PostgresRepo) Update(ctx context.Context, b Binding) error {
	const q = `
UPDATE phone_number_bindings
SET phone_number = $2, updated_at = $3
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, b.ID, b.PhoneNumber, b.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM phone_number_bindings WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Binding, error) {
	const q = `
SELECT id, account_id, phone_number, agent_id, created_at, updated_at
FROM phone_number_bindings
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) FindByPhoneNumber(ctx context.Context, phoneNumber string) (Binding, error) {
	const q = `
SELECT id, account_id, phone_number, agent_id, created_at, updated_at
FROM phone_number_bindings
WHERE phone_number = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, phoneNumber))
}

func (r *PostgresRepo) FindByAgentID(ctx context.Context, agentID string) (Binding, error) {
	const q = `
SELECT id, account_id, phone_number, agent_id, created_at, updated_at
FROM phone_number_bindings
WHERE agent_id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, agentID))
}

func (r *PostgresRepo) ListByAccount(ctx context.Context, accountID string) ([]Binding, error) {
	const q = `
SELECT id, account_id, phone_number, agent_id, created_at, updated_at
FROM phone_number_bindings
WHERE account_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Binding, 0)
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.ID, &b.AccountID, &b.PhoneNumber, &b.AgentID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteByAccount(ctx context.Context, accountID string) (int, error) {
	const q = `DELETE FROM phone_number_bindings WHERE account_id = $1`
	res, err := r.db.ExecContext(ctx, q, accountID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Binding, error) {
	var b Binding
	if err := row.Scan(&b.ID, &b.AccountID, &b.PhoneNumber, &b.AgentID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Binding{}, ErrNotFound
		}
		return Binding{}, err
	}
	return b, nil
}
