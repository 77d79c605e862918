package authkit

import (
	"net/url"
	"time"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/storage"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultRefreshThreshold = 5 * time.Minute
	defaultStoragePrefix    = "authkit."

	// profileCacheTTL is how long a fetched profile stays fresh.
	profileCacheTTL = 5 * time.Minute

	// refreshCooldown breaks refresh loops triggered by repeated 401s.
	refreshCooldown = time.Second
)

// Endpoints are the AuthKit server paths, relative to Config.AuthKitURL.
// Zero values take the defaults below.
type Endpoints struct {
	Authorize  string // default /oauth/authorize
	Token      string // default /oauth/token
	UserInfo   string // default /oauth/userinfo (GET profile, PATCH update)
	Revoke     string // default /oauth/revoke
	Introspect string // default /oauth/introspect
	Register   string // default /users/register
	Social     string // default /auth/social; provider name is appended
}

// Config configures a Client. Immutable after New; New validates and merges
// defaults, so a constructed Client never re-checks these at call time.
type Config struct {
	// AuthKitURL is the authorization server base URL. Required.
	AuthKitURL string

	// ClientID identifies this application. Required.
	ClientID string

	// ClientSecret is set only for confidential clients. Mobile and
	// desktop apps are public clients and leave it empty.
	ClientSecret string

	// RedirectURI is where the authorization server sends the user back.
	// Required; must match a URI registered with the server.
	RedirectURI string

	// Scopes are requested in order; the SDK does not deduplicate.
	Scopes []string

	// UsePKCE enables RFC 7636 for the code flow. Strongly recommended
	// for public clients.
	UsePKCE bool

	// PKCEMethod defaults to S256.
	PKCEMethod oauth2.CodeMethodType

	// AutoRefresh wires the 401 interceptor: one refresh and one replay
	// per authenticated request.
	AutoRefresh bool

	// RefreshThreshold widens the expiry check: a token within this
	// window of its expiry is treated as expired for refresh decisions.
	// Defaults to 5 minutes.
	RefreshThreshold time.Duration

	// Timeout bounds each HTTP request. Defaults to 30 seconds.
	Timeout time.Duration

	// Debug enables request-level logging on the injected logger.
	Debug bool

	// SecureStorage wraps Storage so values are encrypted at rest using
	// StoragePassphrase. Hosts with a platform keychain usually pass an
	// already-secure adapter instead.
	SecureStorage     bool
	StoragePassphrase string

	// Headers are applied to every outgoing request.
	Headers map[string]string

	// Storage is the persistence adapter. Defaults to an in-memory store.
	Storage storage.Adapter

	// Endpoints overrides the server's default paths.
	Endpoints Endpoints

	// ValidateIDToken verifies any id_token in token responses against
	// the server's OIDC discovery document (signature, audience, expiry).
	ValidateIDToken bool

	// IssuerURL is the OIDC issuer used for ValidateIDToken discovery.
	// Defaults to AuthKitURL.
	IssuerURL string
}

func (c Config) withDefaults() Config {
	if c.PKCEMethod == "" {
		c.PKCEMethod = oauth2.CodeMethodTypeS256
	}
	if c.RefreshThreshold <= 0 {
		c.RefreshThreshold = defaultRefreshThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Storage == nil {
		c.Storage = storage.NewMemoryStore(defaultStoragePrefix)
	}
	if c.IssuerURL == "" {
		c.IssuerURL = c.AuthKitURL
	}
	if c.Endpoints.Authorize == "" {
		c.Endpoints.Authorize = "/oauth/authorize"
	}
	if c.Endpoints.Token == "" {
		c.Endpoints.Token = "/oauth/token"
	}
	if c.Endpoints.UserInfo == "" {
		c.Endpoints.UserInfo = "/oauth/userinfo"
	}
	if c.Endpoints.Revoke == "" {
		c.Endpoints.Revoke = "/oauth/revoke"
	}
	if c.Endpoints.Introspect == "" {
		c.Endpoints.Introspect = "/oauth/introspect"
	}
	if c.Endpoints.Register == "" {
		c.Endpoints.Register = "/users/register"
	}
	if c.Endpoints.Social == "" {
		c.Endpoints.Social = "/auth/social"
	}
	return c
}

func (c Config) validate() error {
	if c.AuthKitURL == "" {
		return autherr.New(autherr.KindConfiguration, "AuthKitURL is required")
	}
	if _, err := url.ParseRequestURI(c.AuthKitURL); err != nil {
		return autherr.Wrap(autherr.KindConfiguration, err, "AuthKitURL is not a valid URL")
	}
	if c.ClientID == "" {
		return autherr.New(autherr.KindConfiguration, "ClientID is required")
	}
	if c.RedirectURI == "" {
		return autherr.New(autherr.KindConfiguration, "RedirectURI is required")
	}
	if _, err := url.Parse(c.RedirectURI); err != nil {
		return autherr.Wrap(autherr.KindConfiguration, err, "RedirectURI is not a valid URL")
	}
	if c.SecureStorage && c.StoragePassphrase == "" {
		return autherr.New(autherr.KindConfiguration, "StoragePassphrase is required when SecureStorage is set")
	}
	return nil
}
