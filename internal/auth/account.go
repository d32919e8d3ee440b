// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"context"
	"time"
)

// Account is a durable credential record. The store owns it: ID and
// CreatedAt are assigned at insert and never change afterwards.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// View returns the public projection of the account. The password hash
// never leaves this package through a view.
func (a *Account) View() AccountView {
	return AccountView{
		ID:        a.ID,
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
	}
}

// AccountView is the caller-facing projection of an account.
type AccountView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Session pairs an account view with a freshly issued bearer token.
type Session struct {
	Account AccountView `json:"account"`
	Token   string      `json:"token"`
}

// AccountStore manages account persistence. Implementations must enforce
// username uniqueness atomically at the store level: Create's uniqueness
// check and insert are one operation, never a read followed by a write.
type AccountStore interface {
	// Create inserts a new account, assigning id and creation timestamp.
	// Returns an error wrapping ErrConflict if the username is taken,
	// with no partial effect.
	Create(ctx context.Context, username, passwordHash string) (*Account, error)

	// GetByUsername retrieves an account by its unique username.
	// Returns an error wrapping ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// GetByID retrieves an account by numeric identity.
	// Returns an error wrapping ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// UpdatePassword replaces the password hash of the account matching id,
	// leaving id, username, and created_at untouched. Returns the updated
	// row, or an error wrapping ErrNotFound if no row matched.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (*Account, error)

	// Delete removes the account. Returns an error wrapping ErrNotFound
	// if no row matched.
	Delete(ctx context.Context, id int64) error
}
