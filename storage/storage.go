// Package storage defines the key-value adapter the Session Core persists
// through, along with the reserved keys it uses. Adapters own durability
// semantics; the SDK only assumes string-in/string-out with a not-found
// sentinel.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when the key has no value. Adapters must
// return it (or wrap it) rather than inventing their own sentinel.
var ErrNotFound = errors.New("storage: key not found")

// Reserved keys written by the Session Core. Adapters namespace them with
// their own prefix.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyTokenType       = "token_type"
	KeyExpiresAt       = "expires_at"
	KeyScope           = "scope"
	KeyUserProfile     = "user_profile"
	KeyProfileCachedAt = "user_profile_cached_at"
	KeyPKCEVerifier    = "pkce_verifier"
	KeyOAuthState      = "oauth_state"
)

// Adapter is the pluggable persistence interface. All methods may fail;
// failures are translated to Storage errors by the Session Core.
type Adapter interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear deletes every key in the adapter's namespace.
	Clear(ctx context.Context) error
}
