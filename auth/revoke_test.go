// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisRevoker) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisRevoker(client)
}

func TestRedisRevoker(t *testing.T) {
	mr, r := setupTestRedis(t)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = r.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL(revokedKeyPrefix + "abc")
	assert.Greater(t, ttl, 59*time.Minute)

	// Key disappears with the token's natural expiry
	mr.FastForward(2 * time.Hour)
	revoked, err = r.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevoker_PastExpiryIsNoop(t *testing.T) {
	mr, r := setupTestRedis(t)

	require.NoError(t, r.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedKeyPrefix+"old"))
}

func TestRedisRevoker_Unavailable(t *testing.T) {
	mr, r := setupTestRedis(t)
	mr.Close()

	_, err := r.IsRevoked(context.Background(), "abc")
	assert.Error(t, err)
}

func TestMemoryRevoker(t *testing.T) {
	m := NewMemoryRevoker()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Minute)))
	revoked, _ := m.IsRevoked(ctx, "a")
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = m.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	// Expired entries are pruned on the next revoke
	require.NoError(t, m.Revoke(ctx, "b", now.Add(time.Minute)))
	assert.Len(t, m.revoked, 1)
}
