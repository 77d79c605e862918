package storage_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := storage.NewMemoryStore("authkit.")
	_, err := store.Get(context.Background(), storage.KeyRefreshToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyOAuthState, "state-1"))
	require.NoError(t, store.Remove(ctx, storage.KeyOAuthState))
	require.NoError(t, store.Remove(ctx, storage.KeyOAuthState)) // absent key is fine

	_, err := store.Get(ctx, storage.KeyOAuthState)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore("authkit.")

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))
	require.NoError(t, store.Set(ctx, storage.KeyRefreshToken, "refresh-a"))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx, storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyRefreshToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
