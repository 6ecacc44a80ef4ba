// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/securepass/internal/model"
)

// AccountRepository persists accounts keyed by username.
type AccountRepository interface {
	// Insert creates the account atomically; errs.ErrAlreadyExists if the username is taken.
	Insert(ctx context.Context, a *model.Account) error
	// FetchForAuth loads hash and vault for a username; errs.ErrNotFound if absent.
	FetchForAuth(ctx context.Context, username string) (*model.Account, error)
	// ReplaceVault overwrites the vault of an existing account and reports rows affected (0 or 1).
	ReplaceVault(ctx context.Context, username, vault string) (int64, error)
}
