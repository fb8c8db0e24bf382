package accounts

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes the following table exists:
//
// accounts (
//   id TEXT PRIMARY KEY,
//   external_id TEXT NOT NULL UNIQUE,
//   email TEXT NOT NULL DEFAULT '',
//   is_active BOOLEAN NOT NULL,
//   created_at TIMESTAMPTZ NOT NULL,
//   updated_at TIMESTAMPTZ NOT NULL
// )
//
// The external_id unique index backs the webhook upsert path.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, a Account) error {
	const q = `
INSERT INTO accounts (id, external_id, email, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ExternalID, a.Email, a.IsActive, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, a Account) error {
	const q = `
UPDATE accounts
SET email = $2, is_active = $3, updated_at = $4
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, a.ID, a.Email, a.IsActive, a.UpdatedAt)
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

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM accounts WHERE id = $1`
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

func (r *PostgresRepo) Get(ctx context.Context, id string) (Account, error) {
	const q = `
SELECT id, external_id, email, is_active, created_at, updated_at
FROM accounts
WHERE id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByExternalID(ctx context.Context, externalID string) (Account, error) {
	const q = `
SELECT id, external_id, email, is_active, created_at, updated_at
FROM accounts
WHERE external_id = $1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, externalID))
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.ExternalID, &a.Email, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}
