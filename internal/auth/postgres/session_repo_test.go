// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preppathway/preppathway/internal/auth"
)

var sessionColumns = []string{
	"id", "account_id", "token_hash", "user_agent", "ip_address",
	"expires_at", "created_at", "last_seen_at",
}

func newTestSession(t *testing.T) *auth.Session {
	t.Helper()
	session, err := auth.NewSession(ulid.Make(), "tokenhash", "test-agent", "127.0.0.1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return session
}

func TestSessionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := newTestSession(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(
				session.ID.String(),
				session.AccountID.String(),
				session.TokenHash,
				session.UserAgent,
				session.IPAddress,
				session.ExpiresAt,
				session.CreatedAt,
				session.LastSeenAt,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.Create(ctx, session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps database errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		session := newTestSession(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(
				session.ID.String(),
				session.AccountID.String(),
				session.TokenHash,
				session.UserAgent,
				session.IPAddress,
				session.ExpiresAt,
				session.CreatedAt,
				session.LastSeenAt,
			).
			WillReturnError(errors.New("connection refused"))

		repo := NewSessionRepository(mock)
		err = repo.Create(ctx, session)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestSessionRepository_GetByTokenHash(t *testing.T) {
	ctx := context.Background()

	t.Run("returns session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		accountID := ulid.Make()
		now := time.Now()
		rows := pgxmock.NewRows(sessionColumns).
			AddRow(id.String(), accountID.String(), "tokenhash", "test-agent", "127.0.0.1",
				now.Add(time.Hour), now, now)
		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs("tokenhash").
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		session, err := repo.GetByTokenHash(ctx, "tokenhash")
		require.NoError(t, err)
		assert.Equal(t, id, session.ID)
		assert.Equal(t, accountID, session.AccountID)
		assert.Equal(t, "test-agent", session.UserAgent)
	})

	t.Run("returns ErrNotFound for unknown token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs("unknown").
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		repo := NewSessionRepository(mock)
		session, err := repo.GetByTokenHash(ctx, "unknown")
		assert.Nil(t, session)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionRepository_GetByAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sessions newest first", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID := ulid.Make()
		now := time.Now()
		rows := pgxmock.NewRows(sessionColumns).
			AddRow(ulid.Make().String(), accountID.String(), "hash1", "agent", "127.0.0.1",
				now.Add(time.Hour), now, now).
			AddRow(ulid.Make().String(), accountID.String(), "hash2", "agent", "127.0.0.1",
				now.Add(time.Hour), now.Add(-time.Minute), now)
		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs(accountID.String()).
			WillReturnRows(rows)

		repo := NewSessionRepository(mock)
		sessions, err := repo.GetByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.Equal(t, "hash1", sessions[0].TokenHash)
		assert.Equal(t, "hash2", sessions[1].TokenHash)
	})

	t.Run("returns empty for account without sessions", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID := ulid.Make()
		mock.ExpectQuery(`SELECT id, account_id, token_hash`).
			WithArgs(accountID.String()).
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		repo := NewSessionRepository(mock)
		sessions, err := repo.GetByAccount(ctx, accountID)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})
}

func TestSessionRepository_UpdateLastSeen(t *testing.T) {
	ctx := context.Background()

	t.Run("updates timestamp", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		seen := time.Now()
		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(id.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.UpdateLastSeen(ctx, id, seen))
	})

	t.Run("returns ErrNotFound for unknown session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		seen := time.Now()
		mock.ExpectExec(`UPDATE sessions SET last_seen_at`).
			WithArgs(id.String(), seen).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewSessionRepository(mock)
		assert.ErrorIs(t, repo.UpdateLastSeen(ctx, id, seen), auth.ErrNotFound)
	})
}

func TestSessionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewSessionRepository(mock)
		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("returns ErrNotFound for unknown session", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSessionRepository(mock)
		assert.ErrorIs(t, repo.Delete(ctx, id), auth.ErrNotFound)
	})
}

func TestSessionRepository_DeleteByAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("no error when nothing deleted", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID := ulid.Make()
		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(accountID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewSessionRepository(mock)
		assert.NoError(t, repo.DeleteByAccount(ctx, accountID))
	})
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("returns deleted count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		repo := NewSessionRepository(mock)
		count, err := repo.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
