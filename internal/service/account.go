// Package service contains the account application service.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/model"
	"github.com/and161185/securepass/internal/repository"
)

// AccountService defines the credential and vault operations.
type AccountService interface {
	// Register creates an account with a hashed password and an initial vault.
	Register(ctx context.Context, username, password, encryptedVault string) error
	// Authenticate verifies the password and returns the stored vault.
	Authenticate(ctx context.Context, username, password string) (encryptedVault string, err error)
	// UpdateVault overwrites the vault of an existing account.
	UpdateVault(ctx context.Context, username, encryptedVault string) error
}

// PasswordHasher produces and checks password hashes. Verify reports a
// non-nil error only when no check could be made (e.g. ctx ended).
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

type AccountServiceImpl struct {
	accounts repository.AccountRepository
	hasher   PasswordHasher
	log      *zap.Logger

	// dummyHash is compared against on unknown-user logins. Empty when it
	// could not be computed.
	dummyHash string
}

// NewAccountService constructs AccountService with required dependencies.
func NewAccountService(accounts repository.AccountRepository, hasher PasswordHasher, log *zap.Logger) *AccountServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	s := &AccountServiceImpl{accounts: accounts, hasher: hasher, log: log}
	h, err := hasher.Hash(context.Background(), "securepass-dummy-password")
	if err != nil {
		log.Warn("dummy hash unavailable", zap.Error(err))
	}
	s.dummyHash = h
	return s
}

// Register validates input, hashes the password and inserts the account.
func (s *AccountServiceImpl) Register(ctx context.Context, username, password, encryptedVault string) error {
	log := s.log.With(zap.String("op", "signup"), zap.String("user", username))
	log.Info("attempt")

	if username == "" || password == "" || encryptedVault == "" {
		log.Info("failed: missing fields")
		return errs.ErrMissingFields
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		log.Error("hash password", zap.Error(err))
		return errs.ErrInternal
	}

	err = s.accounts.Insert(ctx, &model.Account{Username: username, PasswordHash: hash, Vault: encryptedVault})
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		log.Info("failed: username exists")
		return errs.ErrUsernameTaken
	case err != nil:
		log.Error("insert account", zap.Error(err))
		return errs.ErrInternal
	}

	log.Info("success")
	return nil
}

// Authenticate returns the vault only after the password matches. Unknown
// users and wrong passwords produce the same error.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, username, password string) (string, error) {
	log := s.log.With(zap.String("op", "login"), zap.String("user", username))
	log.Info("attempt")

	if username == "" || password == "" {
		log.Info("failed: missing fields")
		return "", errs.ErrMissingFields
	}

	acc, err := s.accounts.FetchForAuth(ctx, username)
	if errors.Is(err, errs.ErrNotFound) {
		// Burn a comparison so the response time does not reveal the miss.
		s.verifyDummy(ctx, password)
		log.Info("failed: user not found")
		return "", errs.ErrInvalidCredentials
	}
	if err != nil {
		log.Error("fetch account", zap.Error(err))
		return "", errs.ErrInternal
	}

	ok, err := s.hasher.Verify(ctx, password, acc.PasswordHash)
	if err != nil {
		log.Error("verify password", zap.Error(err))
		return "", errs.ErrInternal
	}
	if !ok {
		log.Info("failed: wrong password")
		return "", errs.ErrInvalidCredentials
	}

	log.Info("success")
	return acc.Vault, nil
}

// UpdateVault replaces the stored vault. It does not check a password.
func (s *AccountServiceImpl) UpdateVault(ctx context.Context, username, encryptedVault string) error {
	log := s.log.With(zap.String("op", "vault_update"), zap.String("user", username))
	log.Info("attempt")

	if username == "" || encryptedVault == "" {
		log.Info("failed: missing fields")
		return errs.ErrMissingFields
	}

	n, err := s.accounts.ReplaceVault(ctx, username, encryptedVault)
	if err != nil {
		log.Error("replace vault", zap.Error(err))
		return errs.ErrInternal
	}
	if n == 0 {
		log.Info("failed: user not found")
		return errs.ErrAccountNotFound
	}

	log.Info("success")
	return nil
}

func (s *AccountServiceImpl) verifyDummy(ctx context.Context, password string) {
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
	}
}
