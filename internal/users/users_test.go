package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_HashesPassword(t *testing.T) {
	u, err := New("Alice", "alice@example.com", "s3cret-pass", RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username, "usernames are stored lowercase")
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong-pass"))
	assert.False(t, u.IsAdmin())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "", "s3cret-pass", RoleUser)
	assert.Error(t, err)

	_, err = New("bob", "", "short", RoleUser)
	assert.Error(t, err, "passwords under 8 characters are rejected")

	_, err = New("ab", "", "s3cret-pass", RoleUser)
	assert.Error(t, err, "usernames under 3 characters are rejected")

	_, err = New("bad name!", "", "s3cret-pass", RoleUser)
	assert.Error(t, err, "usernames with spaces or punctuation are rejected")
}

func TestNew_UnknownRoleDefaultsToUser(t *testing.T) {
	u, err := New("carol", "", "s3cret-pass", "superuser")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)

	admin, err := New("dave", "", "s3cret-pass", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, err := New("alice", "alice@example.com", "s3cret-pass", RoleUser)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, u))

	got, err := store.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = store.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u1, _ := New("alice", "", "s3cret-pass", RoleUser)
	u2, _ := New("alice", "", "other-pass99", RoleUser)

	require.NoError(t, store.Create(ctx, u1))
	assert.ErrorIs(t, store.Create(ctx, u2), ErrUsernameTaken)
}

func TestMemoryStore_Counts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	admin, _ := New("root", "", "s3cret-pass", RoleAdmin)
	analystA, _ := New("alice", "", "s3cret-pass", RoleUser)
	analystB, _ := New("bob", "", "s3cret-pass", RoleUser)
	for _, u := range []*User{admin, analystA, analystB} {
		require.NoError(t, store.Create(ctx, u))
	}

	total, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	admins, err := store.CountByRole(ctx, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, _ := New("alice", "", "s3cret-pass", RoleUser)
	require.NoError(t, store.Create(ctx, u))

	got, err := Authenticate(ctx, store, "Alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = Authenticate(ctx, store, "alice", "wrong-pass")
	assert.ErrorIs(t, err, ErrBadCredential)

	_, err = Authenticate(ctx, store, "mallory", "s3cret-pass")
	assert.ErrorIs(t, err, ErrBadCredential, "unknown user yields the same error as a bad password")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, _ := New("alice", "", "s3cret-pass", RoleUser)
	require.NoError(t, store.Create(ctx, u))

	got, _ := store.GetByID(ctx, u.ID)
	got.Role = RoleAdmin

	again, _ := store.GetByID(ctx, u.ID)
	assert.Equal(t, RoleUser, again.Role, "mutating a returned user must not affect the store")
}
