package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocations(t *testing.T) {
	ctx := context.Background()
	revs := NewMemoryRevocations()

	revoked, err := revs.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, revs.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = revs.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = revs.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeSkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	revs := NewMemoryRevocations()

	require.NoError(t, revs.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	revoked, err := revs.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationsExpire(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	mem := &memoryStore{entries: map[string]time.Time{}, now: func() time.Time { return clock }}
	revs := &Revocations{store: mem, keyer: mem, now: func() time.Time { return clock }}

	require.NoError(t, revs.Revoke(ctx, "jti", clock.Add(time.Minute)))
	clock = clock.Add(2 * time.Minute)

	revoked, err := revs.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, mem.entries)
}

func TestRevokeRequiresTokenID(t *testing.T) {
	require.Error(t, NewMemoryRevocations().Revoke(context.Background(), " ", time.Now().Add(time.Hour)))
}

func TestNewRedisRevocationsRequiresClient(t *testing.T) {
	_, err := NewRedisRevocations(nil)
	require.Error(t, err)
}
