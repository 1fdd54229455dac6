package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	revoked, err := store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "s1", time.Minute))
	revoked, err = store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses with the token")

	require.NoError(t, store.Revoke(ctx, "s2", time.Minute))
	assert.NotContains(t, store.revoked, "s1", "lapsed entries are pruned on write")
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	store := NewMemoryStore()

	assert.ErrorIs(t, store.Revoke(context.Background(), "", time.Minute), ErrEmptySessionID)
	require.NoError(t, store.Revoke(context.Background(), "s1", 0))

	revoked, err := store.IsRevoked(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, revoked, "a non-positive ttl revokes nothing")
	assert.NoError(t, store.Close())
}

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, "session:revoked:abc", revokedKey("abc"))
}
