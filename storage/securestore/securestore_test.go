package securestore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/storage/securestore"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresArguments(t *testing.T) {
	_, err := securestore.New(nil, "passphrase")
	require.Error(t, err)

	_, err = securestore.New(storage.NewMemoryStore(""), "")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore("")

	store, err := securestore.New(inner, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)
}

func TestValuesAreEncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore("")

	store, err := securestore.New(inner, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.KeyRefreshToken, "refresh-secret"))

	raw, err := inner.Get(ctx, storage.KeyRefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, "refresh-secret", raw)
	require.NotContains(t, raw, "refresh-secret")
}

func TestSamePassphraseAcrossInstances(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore("")

	first, err := securestore.New(inner, "pass-1")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.KeyAccessToken, "token-a"))

	// A new Store over the same inner adapter reuses the persisted salt.
	second, err := securestore.New(inner, "pass-1")
	require.NoError(t, err)

	got, err := second.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-a", got)
}

func TestWrongPassphraseFails(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore("")

	first, err := securestore.New(inner, "pass-1")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.KeyAccessToken, "token-a"))

	second, err := securestore.New(inner, "pass-2")
	require.NoError(t, err)

	_, err = second.Get(ctx, storage.KeyAccessToken)
	require.Error(t, err)
}

func TestClearDerivesFreshKey(t *testing.T) {
	ctx := context.Background()
	inner := storage.NewMemoryStore("")

	store, err := securestore.New(inner, "pass-1")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	saltBefore, err := inner.Get(ctx, "securestore_salt")
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-b"))

	saltAfter, err := inner.Get(ctx, "securestore_salt")
	require.NoError(t, err)
	require.NotEqual(t, saltBefore, saltAfter)

	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}

func TestClearConcurrentWithReaders(t *testing.T) {
	ctx := context.Background()
	store, err := securestore.New(storage.NewMemoryStore(""), "pass-1")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-a"))

	// Reads racing a Clear may observe either the old value, a miss, or a
	// value they can no longer decrypt; they must never corrupt the store.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = store.Get(ctx, storage.KeyAccessToken)
			}
		}()
	}
	require.NoError(t, store.Clear(ctx))
	wg.Wait()

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "token-b"))
	got, err := store.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-b", got)
}

func TestGetMissingKey(t *testing.T) {
	store, err := securestore.New(storage.NewMemoryStore(""), "pass")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), storage.KeyOAuthState)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
