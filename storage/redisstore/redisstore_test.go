package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/storage/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Integration test; set REDIS_ADDR (e.g. "localhost:6379") to run.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRequiresClient(t *testing.T) {
	_, err := redisstore.New(nil, "authkit.")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := redisstore.New(testClient(t), "authkit-test.")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Clear(ctx) })

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)

	require.NoError(t, store.Remove(ctx, storage.KeyAccessToken))
	_, err = store.Get(ctx, storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClearRespectsPrefix(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)

	a, err := redisstore.New(client, "authkit-test-a.")
	require.NoError(t, err)
	b, err := redisstore.New(client, "authkit-test-b.")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = a.Clear(ctx)
		_ = b.Clear(ctx)
	})

	require.NoError(t, a.Set(ctx, storage.KeyAccessToken, "token-a"))
	require.NoError(t, b.Set(ctx, storage.KeyAccessToken, "token-b"))

	require.NoError(t, a.Clear(ctx))

	_, err = a.Get(ctx, storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := b.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}
