package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/model"
)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRepo implements AccountRepository on the users table.
type AccountRepo struct {
	db DBTX
}

// NewAccountRepo returns a repository bound to db.
func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

// Insert adds the account unless the username exists. The conflict clause keeps
// the statement atomic: either the full row is written or nothing is.
func (r *AccountRepo) Insert(ctx context.Context, a *model.Account) error {
	const q = `INSERT INTO users (username, passwordHash, vault) VALUES (?, ?, ?)
		ON CONFLICT(username) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q, a.Username, a.PasswordHash, a.Vault)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return errs.ErrAlreadyExists
	}
	return nil
}

// FetchForAuth returns the stored hash and vault for username.
func (r *AccountRepo) FetchForAuth(ctx context.Context, username string) (*model.Account, error) {
	const q = `SELECT username, passwordHash, vault FROM users WHERE username = ?`
	var a model.Account
	err := r.db.QueryRowContext(ctx, q, username).Scan(&a.Username, &a.PasswordHash, &a.Vault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return &a, nil
}

// ReplaceVault overwrites the vault for an existing username.
func (r *AccountRepo) ReplaceVault(ctx context.Context, username, vault string) (int64, error) {
	const q = `UPDATE users SET vault = ? WHERE username = ?`
	res, err := r.db.ExecContext(ctx, q, vault, username)
	if err != nil {
		return 0, fmt.Errorf("failed to update vault: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}
