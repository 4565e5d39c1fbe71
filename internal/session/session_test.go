package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	token, sess, err := m.Issue(ctx, "usr_abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "sess_"))
	assert.Equal(t, "usr_abc", sess.UserID)
	assert.NotContains(t, sess.TokenHash, token, "raw token is never stored")

	got, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestValidate_Rejections(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	_, err := m.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Validate(ctx, "not-a-session-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = m.Validate(ctx, "sess_0000000000000000000000000000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidate_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, -time.Minute) // lifetime <= 0 falls back to default

	assert.Equal(t, DefaultLifetime, m.Lifetime())

	token, sess, err := m.Issue(ctx, "usr_abc")
	require.NoError(t, err)

	// Force expiry in the store.
	sess.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, store.Create(ctx, sess))

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	token, _, err := m.Issue(ctx, "usr_abc")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token))

	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Revoking an unknown token is a no-op.
	assert.NoError(t, m.Revoke(ctx, "sess_deadbeef"))
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live := &Session{ID: "sid_live", TokenHash: "h1", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}
	dead := &Session{ID: "sid_dead", TokenHash: "h2", UserID: "u", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, dead))

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.GetByHash(ctx, "h1")
	assert.NoError(t, err)
	_, err = store.GetByHash(ctx, "h2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPruneExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, time.Hour)

	token, _, err := m.Issue(ctx, "usr_live")
	require.NoError(t, err)

	stale := &Session{ID: "sid_stale", TokenHash: "h-stale", UserID: "usr_gone", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Create(ctx, stale))

	n, err := m.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The live session survives pruning.
	_, err = m.Validate(ctx, token)
	assert.NoError(t, err)
	_, err = store.GetByHash(ctx, "h-stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, _, err := m.Issue(ctx, "usr_abc")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
