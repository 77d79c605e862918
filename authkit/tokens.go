package authkit

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/storage"
)

// TokenMetadata is the reconstructed view of the persisted token record.
type TokenMetadata struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time // zero when the server sent no expiry hint
	Scopes       []string
}

// StoreTokens persists a token response. The absolute expiry is computed at
// receipt time as now + expires_in; when the server omits expires_in and the
// access token is a JWT, the unverified exp claim is used instead. A missing
// refresh_token keeps the previously stored one (rotation-optional servers).
func (c *Client) StoreTokens(ctx context.Context, tr *oauth2.TokenResponse) error {
	if tr == nil || tr.AccessToken == "" {
		return autherr.New(autherr.KindToken, "token response has no access token")
	}

	if err := c.storageSet(ctx, storage.KeyAccessToken, tr.AccessToken); err != nil {
		return err
	}
	if tr.RefreshToken != "" {
		if err := c.storageSet(ctx, storage.KeyRefreshToken, tr.RefreshToken); err != nil {
			return err
		}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	if err := c.storageSet(ctx, storage.KeyTokenType, tokenType); err != nil {
		return err
	}

	expiresAt := tr.ExpiresAt(c.nowTime())
	if expiresAt.IsZero() {
		if exp, ok := jwtExpiry(tr.AccessToken); ok {
			expiresAt = exp
		}
	}
	if !expiresAt.IsZero() {
		if err := c.storageSet(ctx, storage.KeyExpiresAt, strconv.FormatInt(expiresAt.Unix(), 10)); err != nil {
			return err
		}
	} else if err := c.storageRemove(ctx, storage.KeyExpiresAt); err != nil {
		return err
	}

	if tr.Scope != "" {
		if err := c.storageSet(ctx, storage.KeyScope, tr.Scope); err != nil {
			return err
		}
	}
	return nil
}

// AccessToken returns the stored access token, or a Token error when logged
// out.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, ok, err := c.storageGet(ctx, storage.KeyAccessToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", autherr.New(autherr.KindToken, "no access token stored")
	}
	return token, nil
}

// Tokens returns the stored token record, or nil when logged out or when
// storage fails. Never errors: custom flows poll this accessor and a
// transient storage failure should read as "no session", not crash them.
func (c *Client) Tokens(ctx context.Context) *TokenMetadata {
	token, ok, err := c.storageGet(ctx, storage.KeyAccessToken)
	if err != nil || !ok {
		return nil
	}

	md := &TokenMetadata{AccessToken: token, TokenType: "Bearer"}
	if refresh, ok, err := c.storageGet(ctx, storage.KeyRefreshToken); err == nil && ok {
		md.RefreshToken = refresh
	}
	if tokenType, ok, err := c.storageGet(ctx, storage.KeyTokenType); err == nil && ok {
		md.TokenType = tokenType
	}
	if expStr, ok, err := c.storageGet(ctx, storage.KeyExpiresAt); err == nil && ok {
		if unix, err := strconv.ParseInt(expStr, 10, 64); err == nil {
			md.ExpiresAt = time.Unix(unix, 0)
		}
	}
	if scope, ok, err := c.storageGet(ctx, storage.KeyScope); err == nil && ok {
		md.Scopes = strings.Fields(scope)
	}
	return md
}

// IsAuthenticated reports whether a usable session exists. An expired token
// triggers one refresh attempt whose failure is swallowed; despite the
// query-like name this can hit the network and mutate storage.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := c.storageGet(ctx, storage.KeyAccessToken)
	if err != nil || !ok {
		return false
	}

	expStr, ok, err := c.storageGet(ctx, storage.KeyExpiresAt)
	if err != nil {
		return false
	}
	if !ok {
		// No expiry recorded: trust the token.
		return true
	}

	unix, parseErr := strconv.ParseInt(expStr, 10, 64)
	if parseErr != nil {
		return false
	}
	if !c.tokenExpired(time.Unix(unix, 0)) {
		return true
	}

	if _, err := c.RefreshAccessToken(ctx); err != nil {
		c.log.Debug().Err(err).Msg("refresh during IsAuthenticated failed")
		return false
	}
	return true
}

// tokenExpired treats tokens within RefreshThreshold of expiry as expired.
func (c *Client) tokenExpired(expiresAt time.Time) bool {
	return !c.nowTime().Before(expiresAt.Add(-c.cfg.RefreshThreshold))
}

// RevokeToken revokes a token server-side.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	resp, err := c.postForm(ctx, c.endpointURL(c.cfg.Endpoints.Revoke), form, "token revocation")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return autherr.FromResponse(resp.StatusCode, resp.Body, "token revocation failed")
	}
	return nil
}

// ClearStorage wipes every key the SDK owns.
func (c *Client) ClearStorage(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return autherr.Wrap(autherr.KindStorage, err, "storage clear failed")
	}
	return nil
}

// Logout best-effort revokes the access token (failures are logged, not
// propagated), then unconditionally clears storage and emits
// user_logged_out.
func (c *Client) Logout(ctx context.Context) error {
	if token, ok, err := c.storageGet(ctx, storage.KeyAccessToken); err == nil && ok {
		if err := c.RevokeToken(ctx, token); err != nil {
			c.log.Warn().Err(err).Msg("logout-time revocation failed")
		}
	}

	if err := c.ClearStorage(ctx); err != nil {
		return err
	}
	c.bus.Emit(events.Event{Type: events.UserLoggedOut})
	return nil
}
