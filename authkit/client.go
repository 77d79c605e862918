// Package authkit implements the Session Core of the SDK: the OAuth 2.0
// Authorization Code + PKCE flow, token persistence and refresh, the user
// profile cache, and lifecycle events. One Client manages one session for
// one app; cross-call concurrency is not coordinated beyond the refresh
// single-flight guard.
package authkit

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/browser"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/httpx"
	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/storage/securestore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client is the session core. Construct with New; the zero value is not
// usable.
type Client struct {
	cfg    Config
	store  storage.Adapter
	http   *httpx.Client
	bus    *events.Bus
	opener browser.Opener
	log    zerolog.Logger

	nowTime func() time.Time

	// refreshLimiter gates refresh attempts (cooldown); refreshGroup
	// collapses concurrent refreshes into a single network call.
	refreshLimiter *rate.Limiter
	refreshGroup   singleflight.Group

	oidcOnce     sync.Once
	oidcVerifier *oidc.IDTokenVerifier
	oidcErr      error

	httpClient *http.Client
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithBrowser sets the browser-session opener used by Login and
// LoginWithSocial.
func WithBrowser(opener browser.Opener) Option {
	return func(c *Client) { c.opener = opener }
}

// WithHTTPClient replaces the underlying http.Client (primarily for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithNowTime sets the clock (primarily for tests).
func WithNowTime(now func() time.Time) Option {
	return func(c *Client) { c.nowTime = now }
}

// New validates the config, merges defaults, and builds a Client. Missing
// required fields fail here with a Configuration error, never at first use.
func New(cfg Config, options ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:            cfg,
		bus:            events.New(),
		log:            zerolog.Nop(),
		nowTime:        time.Now,
		refreshLimiter: rate.NewLimiter(rate.Every(refreshCooldown), 1),
	}
	for _, opt := range options {
		opt(c)
	}

	c.store = cfg.Storage
	if cfg.SecureStorage {
		secured, err := securestore.New(cfg.Storage, cfg.StoragePassphrase)
		if err != nil {
			return nil, autherr.Wrap(autherr.KindConfiguration, err, "secure storage setup failed")
		}
		c.store = secured
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	httpOpts := []httpx.Option{
		httpx.WithHTTPClient(c.httpClient),
		httpx.WithHeaders(cfg.Headers),
		httpx.WithBearerAuth(c.bearerToken,
			allowListPaths(cfg.AuthKitURL, cfg.Endpoints.UserInfo, cfg.Endpoints.Introspect, cfg.Endpoints.Revoke)...),
	}
	if cfg.Debug {
		httpOpts = append(httpOpts, httpx.WithLogger(c.log))
	}
	if cfg.AutoRefresh {
		httpOpts = append(httpOpts, httpx.WithRefresh(c.refreshForReplay))
	}
	c.http = httpx.New(httpOpts...)

	return c, nil
}

// Events exposes the lifecycle event bus for the UI-state layer.
func (c *Client) Events() *events.Bus {
	return c.bus
}

func (c *Client) endpointURL(path string) string {
	return strings.TrimRight(c.cfg.AuthKitURL, "/") + path
}

// allowListPaths resolves endpoint paths against the base URL's own path, so
// a server mounted under a prefix (https://example.com/auth) still matches
// the interceptor's allow-list, which compares full request paths.
func allowListPaths(baseURL string, endpoints ...string) []string {
	base := ""
	if u, err := url.Parse(baseURL); err == nil {
		base = strings.TrimRight(u.Path, "/")
	}
	paths := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		paths = append(paths, base+endpoint)
	}
	return paths
}

// bearerToken is the interceptor's token source: the stored access token,
// or "" when logged out.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	token, ok, err := c.storageGet(ctx, storage.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// refreshForReplay adapts RefreshAccessToken to the interceptor's shape.
func (c *Client) refreshForReplay(ctx context.Context) (string, error) {
	tr, err := c.RefreshAccessToken(ctx)
	if err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// storageGet reads a key, mapping a miss to (_, false, nil) and any adapter
// failure to a Storage error.
func (c *Client) storageGet(ctx context.Context, key string) (string, bool, error) {
	value, err := c.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, autherr.Wrap(autherr.KindStorage, err, "storage read failed: "+key)
	}
	return value, true, nil
}

func (c *Client) storageSet(ctx context.Context, key, value string) error {
	if err := c.store.Set(ctx, key, value); err != nil {
		return autherr.Wrap(autherr.KindStorage, err, "storage write failed: "+key)
	}
	return nil
}

func (c *Client) storageRemove(ctx context.Context, key string) error {
	if err := c.store.Remove(ctx, key); err != nil {
		return autherr.Wrap(autherr.KindStorage, err, "storage remove failed: "+key)
	}
	return nil
}

// postForm wraps the transport call, translating transport failures and
// emitting network_error. Non-2xx responses come back untranslated for the
// caller to map.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, opName string) (*httpx.Response, error) {
	resp, err := c.http.PostForm(ctx, rawURL, form)
	if err != nil {
		return nil, c.networkFailure(err, opName)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, opName string) (*httpx.Response, error) {
	resp, err := c.http.Get(ctx, rawURL)
	if err != nil {
		return nil, c.networkFailure(err, opName)
	}
	return resp, nil
}

func (c *Client) networkFailure(err error, opName string) error {
	translated := autherr.Translate(err, opName+" failed")
	c.bus.Emit(events.Event{Type: events.NetworkError, Err: translated})
	return translated
}
