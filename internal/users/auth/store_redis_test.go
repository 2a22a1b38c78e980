// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestResetTokenRepositoryRoundTrip(t *testing.T) {
	server, client := newTestRedis(t)
	repo := NewResetTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token-1", "user-1", ResetTokenTTL))

	userID, err := repo.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// A used token must not be redeemable twice.
	require.NoError(t, repo.Delete(ctx, "token-1"))
	_, err = repo.Get(ctx, "token-1")
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))

	// Expiry enforced by TTL.
	require.NoError(t, repo.Set(ctx, "token-2", "user-2", time.Minute))
	server.FastForward(2 * time.Minute)
	_, err = repo.Get(ctx, "token-2")
	assert.Error(t, err)
}

func TestVerificationTokenRepositoryRoundTrip(t *testing.T) {
	server, client := newTestRedis(t)
	repo := NewVerificationTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "verify-1", "user-1", VerificationTokenTTL))

	userID, err := repo.Get(ctx, "verify-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, repo.Delete(ctx, "verify-1"))
	_, err = repo.Get(ctx, "verify-1")
	assert.Error(t, err)

	require.NoError(t, repo.Set(ctx, "verify-2", "user-2", time.Hour))
	server.FastForward(25 * time.Hour)
	_, err = repo.Get(ctx, "verify-2")
	assert.Error(t, err)
}

func TestTokenRepositoriesUseDistinctKeyspaces(t *testing.T) {
	_, client := newTestRedis(t)
	resetRepo := NewResetTokenRepository(client)
	verifyRepo := NewVerificationTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, resetRepo.Set(ctx, "same-token", "reset-user", time.Hour))
	require.NoError(t, verifyRepo.Set(ctx, "same-token", "verify-user", time.Hour))

	resetUser, err := resetRepo.Get(ctx, "same-token")
	require.NoError(t, err)
	verifyUser, err := verifyRepo.Get(ctx, "same-token")
	require.NoError(t, err)

	assert.Equal(t, "reset-user", resetUser)
	assert.Equal(t, "verify-user", verifyUser)
}
