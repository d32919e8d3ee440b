// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/mocks"
	"github.com/gatehouse/gatehouse/pkg/errutil"
)

func newTestService(t *testing.T) (*auth.Service, *mocks.MockAccountStore, *mocks.MockPasswordHasher, *mocks.MockTokenIssuer) {
	t.Helper()
	accounts := mocks.NewMockAccountStore(t)
	hasher := mocks.NewMockPasswordHasher(t)
	tokens := mocks.NewMockTokenIssuer(t)
	svc, err := auth.NewService(accounts, hasher, tokens)
	require.NoError(t, err)
	return svc, accounts, hasher, tokens
}

func testAccount() *auth.Account {
	return &auth.Account{
		ID:           1,
		Username:     "sam",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		accounts    auth.AccountStore
		hasher      auth.PasswordHasher
		tokens      auth.TokenIssuer
		expectError string
	}{
		{
			name:        "nil account store",
			hasher:      mocks.NewMockPasswordHasher(t),
			tokens:      mocks.NewMockTokenIssuer(t),
			expectError: "account store is required",
		},
		{
			name:        "nil password hasher",
			accounts:    mocks.NewMockAccountStore(t),
			tokens:      mocks.NewMockTokenIssuer(t),
			expectError: "password hasher is required",
		},
		{
			name:        "nil token issuer",
			accounts:    mocks.NewMockAccountStore(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "token issuer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.accounts, tt.hasher, tt.tokens)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and returns public view", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)
		account := testAccount()

		hasher.On("Hash", "Password123").Return(account.PasswordHash, nil)
		accounts.On("Create", ctx, "sam", account.PasswordHash).Return(account, nil)

		view, err := svc.Register(ctx, "sam", "Password123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), view.ID)
		assert.Equal(t, "sam", view.Username)
		assert.Equal(t, account.CreatedAt, view.CreatedAt)
	})

	t.Run("blank username is invalid input", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		view, err := svc.Register(ctx, "", "Password123")
		require.Error(t, err)
		assert.Nil(t, view)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("blank password is invalid input, hasher never runs", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		view, err := svc.Register(ctx, "sam", "")
		require.Error(t, err)
		assert.Nil(t, view)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("duplicate username maps conflict to already-exists", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)

		hasher.On("Hash", "Password123").Return("hash2", nil)
		accounts.On("Create", ctx, "sam", "hash2").Return(nil, auth.ErrConflict)

		view, err := svc.Register(ctx, "sam", "Password123")
		require.Error(t, err)
		assert.Nil(t, view)
		errutil.AssertErrorCode(t, err, "AUTH_ALREADY_EXISTS")
	})

	t.Run("hash failure never reaches the store", func(t *testing.T) {
		svc, _, hasher, _ := newTestService(t)

		hasher.On("Hash", "pw").Return("", errors.New("rng exhausted"))

		view, err := svc.Register(ctx, "sam", "pw")
		require.Error(t, err)
		assert.Nil(t, view)
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})

	t.Run("store failure maps to internal", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)

		hasher.On("Hash", "pw").Return("hash", nil)
		accounts.On("Create", ctx, "sam", "hash").Return(nil, errors.New("connection refused"))

		_, err := svc.Register(ctx, "sam", "pw")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a session", func(t *testing.T) {
		svc, accounts, hasher, tokens := newTestService(t)
		account := testAccount()

		accounts.On("GetByUsername", ctx, "sam").Return(account, nil)
		hasher.On("Verify", "Password123", account.PasswordHash).Return(true, nil)
		tokens.On("Issue", int64(1), "sam").Return("token-1", nil)

		session, err := svc.Authenticate(ctx, "sam", "Password123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), session.Account.ID)
		assert.Equal(t, "sam", session.Account.Username)
		assert.Equal(t, "token-1", session.Token)
	})

	t.Run("unknown username still verifies against dummy hash", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)

		accounts.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", "Password123", mock.AnythingOfType("string")).Return(false, nil)

		session, err := svc.Authenticate(ctx, "ghost", "Password123")
		require.Error(t, err)
		assert.Nil(t, session)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("wrong password is indistinguishable from unknown username", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)
		account := testAccount()

		accounts.On("GetByUsername", ctx, "sam").Return(account, nil)
		hasher.On("Verify", "wrong", account.PasswordHash).Return(false, nil)

		session, err := svc.Authenticate(ctx, "sam", "wrong")
		require.Error(t, err)
		assert.Nil(t, session)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("corrupt stored hash maps to internal", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)
		account := testAccount()

		accounts.On("GetByUsername", ctx, "sam").Return(account, nil)
		hasher.On("Verify", "Password123", account.PasswordHash).Return(false, errors.New("invalid hash format"))

		_, err := svc.Authenticate(ctx, "sam", "Password123")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})

	t.Run("dummy-hash verify error still reads as invalid credentials", func(t *testing.T) {
		svc, accounts, hasher, _ := newTestService(t)

		accounts.On("GetByUsername", ctx, "ghost").Return(nil, auth.ErrNotFound)
		hasher.On("Verify", "pw", mock.AnythingOfType("string")).Return(false, errors.New("boom"))

		_, err := svc.Authenticate(ctx, "ghost", "pw")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("store failure maps to internal, no token issued", func(t *testing.T) {
		svc, accounts, _, _ := newTestService(t)

		accounts.On("GetByUsername", ctx, "sam").Return(nil, errors.New("connection refused"))

		_, err := svc.Authenticate(ctx, "sam", "pw")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})
}

func TestService_RotatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates and issues a fresh token for the same identity", func(t *testing.T) {
		svc, accounts, hasher, tokens := newTestService(t)
		account := testAccount()
		updated := *account
		updated.PasswordHash = "new-hash"

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("GetByID", ctx, int64(1)).Return(account, nil)
		hasher.On("Hash", "NewPass456").Return("new-hash", nil)
		accounts.On("UpdatePassword", ctx, int64(1), "new-hash").Return(&updated, nil)
		tokens.On("Issue", int64(1), "sam").Return("token-2", nil)

		session, err := svc.RotatePassword(ctx, "token-1", "NewPass456")
		require.NoError(t, err)
		assert.Equal(t, int64(1), session.Account.ID)
		assert.Equal(t, "token-2", session.Token)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "bad").Return("", auth.ErrTokenInvalid)

		_, err := svc.RotatePassword(ctx, "bad", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "old").Return("", auth.ErrTokenExpired)

		_, err := svc.RotatePassword(ctx, "old", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("non-numeric subject is unauthorized, not a parse error", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "weird").Return("abc", nil)

		_, err := svc.RotatePassword(ctx, "weird", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("non-positive subject is unauthorized", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "zero").Return("0", nil)

		_, err := svc.RotatePassword(ctx, "zero", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("blank new password is invalid input", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "token-1").Return("1", nil)

		_, err := svc.RotatePassword(ctx, "token-1", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_INPUT")
	})

	t.Run("vanished account is unauthorized", func(t *testing.T) {
		svc, accounts, _, tokens := newTestService(t)

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("GetByID", ctx, int64(1)).Return(nil, auth.ErrNotFound)

		_, err := svc.RotatePassword(ctx, "token-1", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("account vanishing between lookup and update is unauthorized", func(t *testing.T) {
		svc, accounts, hasher, tokens := newTestService(t)
		account := testAccount()

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("GetByID", ctx, int64(1)).Return(account, nil)
		hasher.On("Hash", "NewPass456").Return("new-hash", nil)
		accounts.On("UpdatePassword", ctx, int64(1), "new-hash").Return(nil, auth.ErrNotFound)

		_, err := svc.RotatePassword(ctx, "token-1", "NewPass456")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})
}

func TestService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the account the token names", func(t *testing.T) {
		svc, accounts, _, tokens := newTestService(t)

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("Delete", ctx, int64(1)).Return(nil)

		err := svc.DeleteAccount(ctx, "token-1")
		assert.NoError(t, err)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		svc, _, _, tokens := newTestService(t)

		tokens.On("Verify", "bad").Return("", auth.ErrTokenInvalid)

		err := svc.DeleteAccount(ctx, "bad")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("vanished account is unauthorized, same as rotate", func(t *testing.T) {
		svc, accounts, _, tokens := newTestService(t)

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("Delete", ctx, int64(1)).Return(auth.ErrNotFound)

		err := svc.DeleteAccount(ctx, "token-1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("store failure maps to internal", func(t *testing.T) {
		svc, accounts, _, tokens := newTestService(t)

		tokens.On("Verify", "token-1").Return("1", nil)
		accounts.On("Delete", ctx, int64(1)).Return(errors.New("connection refused"))

		err := svc.DeleteAccount(ctx, "token-1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})
}
