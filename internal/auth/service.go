// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/samber/oops"
)

// dummyPasswordHash is verified against when a username does not exist so
// unknown-user and wrong-password take the same time. It is not a
// credential and can never match a real password.
//
//nolint:gosec // G101: fake hash for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service orchestrates the account store, password hasher, and token
// issuer. It is stateless and safe for unbounded parallel use; the store's
// native uniqueness guarantees carry all cross-request atomicity.
type Service struct {
	accounts AccountStore
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewService creates a Service. All three dependencies are required.
func NewService(accounts AccountStore, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("account store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens}, nil
}

// Register creates a new account and returns its public view. Registration
// does not imply a session, so no token is issued.
func (s *Service) Register(ctx context.Context, username, password string) (*AccountView, error) {
	if username == "" || password == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("username and password are required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := s.accounts.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("AUTH_ALREADY_EXISTS").
				With("username", username).
				Errorf("username already taken")
		}
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "create account").
			Wrap(err)
	}

	view := account.View()
	return &view, nil
}

// Authenticate verifies a username/password pair and returns a session. An
// unknown username and a wrong password are indistinguishable to the
// caller, in both the error returned and the time taken.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	account, lookupErr := s.accounts.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = account.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep the dummy hash so verification still runs.
	default:
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "get account by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		// A stored hash that cannot be parsed is corruption, not a
		// credential mismatch.
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !exists || !valid {
		return nil, invalidCredentials()
	}

	return s.issueSession(account)
}

// RotatePassword replaces the password of the account a token names and
// returns a fresh session bound to the same identity. Any token failure,
// including a token naming a vanished account, surfaces uniformly as
// unauthorized so callers cannot probe account existence.
func (s *Service) RotatePassword(ctx context.Context, token, newPassword string) (*Session, error) {
	id, err := s.authorize(token)
	if err != nil {
		return nil, err
	}

	if newPassword == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").Errorf("new password is required")
	}

	if _, err := s.accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized()
		}
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "get account by id").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return nil, oops.Code("AUTH_INVALID_INPUT").Wrap(err)
		}
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "hash new password").
			Wrap(err)
	}

	updated, err := s.accounts.UpdatePassword(ctx, id, hash)
	if err != nil {
		// The account can vanish between lookup and update; same policy.
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized()
		}
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "update password").
			Wrap(err)
	}

	return s.issueSession(updated)
}

// DeleteAccount removes the account a token names. Token failures and a
// vanished account surface uniformly as unauthorized.
func (s *Service) DeleteAccount(ctx context.Context, token string) error {
	id, err := s.authorize(token)
	if err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return unauthorized()
		}
		return oops.Code("AUTH_INTERNAL").
			With("operation", "delete account").
			Wrap(err)
	}
	return nil
}

// authorize verifies a token and parses its subject as a positive account
// id. Every failure collapses to unauthorized: the caller must not learn
// whether the token was structurally valid but semantically wrong.
func (s *Service) authorize(token string) (int64, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return 0, unauthorized()
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, unauthorized()
	}
	return id, nil
}

func (s *Service) issueSession(account *Account) (*Session, error) {
	token, err := s.tokens.Issue(account.ID, account.Username)
	if err != nil {
		return nil, oops.Code("AUTH_INTERNAL").
			With("operation", "issue token").
			Wrap(err)
	}
	return &Session{Account: account.View(), Token: token}, nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
}

func unauthorized() error {
	return oops.Code("AUTH_UNAUTHORIZED").Errorf("invalid or expired token")
}
