package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/storage/sqlitestore"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, prefix string) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.Open(filepath.Join(t.TempDir(), "authkit.db"), prefix)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "first"))
	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "second"))

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "second", got)
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t, "authkit.")
	_, err := store.Get(context.Background(), storage.KeyRefreshToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, "authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyOAuthState, "state-1"))
	require.NoError(t, store.Remove(ctx, storage.KeyOAuthState))
	require.NoError(t, store.Remove(ctx, storage.KeyOAuthState))

	_, err := store.Get(ctx, storage.KeyOAuthState)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClearRespectsPrefix(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "authkit.db")

	a, err := sqlitestore.Open(path, "a.")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	b, err := sqlitestore.Open(path, "b.")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, a.Set(ctx, storage.KeyAccessToken, "token-a"))
	require.NoError(t, b.Set(ctx, storage.KeyAccessToken, "token-b"))

	require.NoError(t, a.Clear(ctx))

	_, err = a.Get(ctx, storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := b.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}
