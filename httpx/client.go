// Package httpx wraps net/http for the SDK: form-encoded POSTs, JSON
// requests, custom headers, a bearer-token interceptor restricted to an
// endpoint allow-list, and a single refresh-and-replay on 401.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenSource supplies the current access token, or "" when none is stored.
type TokenSource func(ctx context.Context) (string, error)

// RefreshFunc refreshes the session and returns the new access token. Wired
// only when auto-refresh is enabled.
type RefreshFunc func(ctx context.Context) (string, error)

// Response is a fully-read HTTP response. Non-2xx statuses are returned to
// the caller for translation, not as transport errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	return errors.Wrap(json.Unmarshal(r.Body, v), "[Response.DecodeJSON] unmarshal")
}

// Client issues the SDK's HTTP requests.
type Client struct {
	http    *http.Client
	headers map[string]string
	token   TokenSource
	refresh RefreshFunc
	allowed map[string]struct{}
	log     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (timeouts live there).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithHeaders sets custom headers applied to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) { c.headers = headers }
}

// WithLogger sets the request logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithBearerAuth attaches "Authorization: Bearer <token>" to requests whose
// URL path is in allowPaths — and only to those, so tokens never leak to
// unrelated endpoints reachable through the same client.
func WithBearerAuth(source TokenSource, allowPaths ...string) Option {
	return func(c *Client) {
		c.token = source
		c.allowed = make(map[string]struct{}, len(allowPaths))
		for _, p := range allowPaths {
			c.allowed[p] = struct{}{}
		}
	}
}

// WithRefresh enables the 401 interceptor: one refresh, one replay.
func WithRefresh(fn RefreshFunc) Option {
	return func(c *Client) { c.refresh = fn }
}

func New(opts ...Option) *Client {
	c := &Client{
		http: http.DefaultClient,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostForm POSTs an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, "application/x-www-form-urlencoded", []byte(form.Encode()))
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, "", nil)
}

// PostJSON POSTs a JSON body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any) (*Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.PostJSON] marshal")
	}
	return c.do(ctx, http.MethodPost, rawURL, "application/json", raw)
}

// PatchJSON PATCHes a JSON body.
func (c *Client) PatchJSON(ctx context.Context, rawURL string, body any) (*Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.PatchJSON] marshal")
	}
	return c.do(ctx, http.MethodPatch, rawURL, "application/json", raw)
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body []byte) (*Response, error) {
	authorized, err := c.authorizedPath(rawURL)
	if err != nil {
		return nil, err
	}

	var bearer string
	if authorized && c.token != nil {
		bearer, err = c.token(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.do] token source")
		}
	}

	resp, err := c.send(ctx, method, rawURL, contentType, body, bearer)
	if err != nil {
		return nil, err
	}

	// One refresh, one replay. A second 401 propagates to the caller.
	if resp.StatusCode == http.StatusUnauthorized && authorized && c.refresh != nil {
		c.log.Debug().Str("url", rawURL).Msg("401 response, attempting token refresh")
		newToken, refreshErr := c.refresh(ctx)
		if refreshErr != nil {
			return resp, nil
		}
		return c.send(ctx, method, rawURL, contentType, body, newToken)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, rawURL, contentType string, body []byte, bearer string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] round trip")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.send] read body")
	}

	c.log.Debug().Str("method", method).Str("url", rawURL).Int("status", resp.StatusCode).Msg("request complete")

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

func (c *Client) authorizedPath(rawURL string) (bool, error) {
	if len(c.allowed) == 0 {
		return false, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, errors.Wrap(err, "[Client.authorizedPath] parse url")
	}
	_, ok := c.allowed[u.Path]
	return ok, nil
}
