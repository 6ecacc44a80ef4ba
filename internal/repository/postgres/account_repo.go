package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Insert creates a users row; the primary key rejects duplicates.
func (r *AccountRepo) Insert(ctx context.Context, a *model.Account) error {
	const q = `
INSERT INTO users (username, password_hash, vault)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, a.Username, a.PasswordHash, a.Vault)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FetchForAuth selects hash and vault by username.
func (r *AccountRepo) FetchForAuth(ctx context.Context, username string) (*model.Account, error) {
	const q = `
SELECT username, password_hash, vault
FROM users WHERE username=$1`
	var a model.Account
	err := r.db.Pool.QueryRow(ctx, q, username).Scan(&a.Username, &a.PasswordHash, &a.Vault)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &a, nil
}

// ReplaceVault updates the vault of an existing row only.
func (r *AccountRepo) ReplaceVault(ctx context.Context, username, vault string) (int64, error) {
	const q = `
UPDATE users
SET vault = $2, updated_at = now()
WHERE username = $1`
	tag, err := r.db.Pool.Exec(ctx, q, username, vault)
	if err != nil {
		return 0, fmt.Errorf("update vault: %w", err)
	}
	return tag.RowsAffected(), nil
}
