// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/preppathway/preppathway/internal/auth"
	"github.com/preppathway/preppathway/internal/auth/mocks"
	"github.com/preppathway/preppathway/pkg/errutil"
)

func TestNewPasswordResetService_NilDependencies(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository(t)
	resetRepo := mocks.NewMockPasswordResetRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)

	_, err := auth.NewPasswordResetService(nil, resetRepo, hasher)
	assert.Error(t, err)

	_, err = auth.NewPasswordResetService(accountRepo, nil, hasher)
	assert.Error(t, err)

	_, err = auth.NewPasswordResetService(accountRepo, resetRepo, nil)
	assert.Error(t, err)
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("existing account gets a token", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		account := &auth.Account{ID: ulid.Make(), Email: "jane@example.com"}
		accountRepo.On("GetByEmail", ctx, "jane@example.com").Return(account, nil)
		resetRepo.On("Create", ctx, mock.MatchedBy(func(r *auth.PasswordReset) bool {
			return r.AccountID == account.ID && !r.IsExpired()
		})).Return(nil)

		token, err := svc.RequestReset(ctx, "Jane@Example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("unknown email returns success with empty token", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		accountRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, auth.ErrNotFound)

		token, err := svc.RequestReset(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, token)
		resetRepo.AssertNotCalled(t, "Create")
	})

	t.Run("store failure propagates", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		accountRepo.On("GetByEmail", ctx, "jane@example.com").Return(nil, errors.New("connection refused"))

		_, err = svc.RequestReset(ctx, "jane@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_REQUEST_FAILED")
	})
}

func TestPasswordResetService_ValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token returns account ID", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		accountID := ulid.Make()
		reset := &auth.PasswordReset{
			ID:        ulid.Make(),
			AccountID: accountID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		resetRepo.On("GetByTokenHash", ctx, hash).Return(reset, nil)

		got, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, accountID, got)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_TOKEN_EMPTY")
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		resetRepo.On("GetByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, auth.ErrNotFound)

		_, err = svc.ValidateToken(ctx, "deadbeef")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_TOKEN_INVALID")
	})

	t.Run("expired token rejected", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		reset := &auth.PasswordReset{
			ID:        ulid.Make(),
			AccountID: ulid.Make(),
			TokenHash: hash,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		resetRepo.On("GetByTokenHash", ctx, hash).Return(reset, nil)

		_, err = svc.ValidateToken(ctx, token)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_TOKEN_EXPIRED")
	})
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resets password and clears tokens", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		accountID := ulid.Make()
		reset := &auth.PasswordReset{
			ID:        ulid.Make(),
			AccountID: accountID,
			TokenHash: hash,
			ExpiresAt: time.Now().Add(time.Hour),
		}

		resetRepo.On("GetByTokenHash", ctx, hash).Return(reset, nil)
		hasher.On("Hash", "newpassword1").Return("$argon2id$newhash", nil)
		accountRepo.On("UpdatePassword", ctx, accountID, "$argon2id$newhash").Return(nil)
		resetRepo.On("DeleteByAccount", ctx, accountID).Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, token, "newpassword1"))
	})

	t.Run("weak new password rejected before token validation", func(t *testing.T) {
		accountRepo := mocks.NewMockAccountRepository(t)
		resetRepo := mocks.NewMockPasswordResetRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewPasswordResetService(accountRepo, resetRepo, hasher)
		require.NoError(t, err)

		err = svc.ResetPassword(ctx, "sometoken", "short")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
		resetRepo.AssertNotCalled(t, "GetByTokenHash")
	})
}
