package authkit

import (
	"context"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/storage"
)

// RefreshAccessToken exchanges the stored refresh token for new tokens.
// Attempts are gated by a one-second cooldown (immediate Token error, no
// network call) and concurrent callers are collapsed into a single network
// attempt sharing one result. Success persists the new tokens and emits
// token_refreshed; a failed attempt emits token_expired before propagating.
func (c *Client) RefreshAccessToken(ctx context.Context) (*oauth2.TokenResponse, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.TokenResponse), nil
}

func (c *Client) doRefresh(ctx context.Context) (*oauth2.TokenResponse, error) {
	// The limiter runs on the injected clock and consumes its token only
	// when the gate passes, so a rejected attempt does not push the next
	// window out.
	if !c.refreshLimiter.AllowN(c.nowTime(), 1) {
		return nil, autherr.New(autherr.KindToken, "refresh attempted too soon").WithCode(autherr.CodeRateLimited)
	}

	refreshToken, ok, err := c.storageGet(ctx, storage.KeyRefreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, autherr.New(autherr.KindToken, "no refresh token stored").WithCode(autherr.CodeMissingRefreshToken)
	}

	req := &oauth2.TokenRequest{
		GrantType:    oauth2.RefreshTokenGrant,
		RefreshToken: refreshToken,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	}

	resp, err := c.postForm(ctx, c.endpointURL(c.cfg.Endpoints.Token), req.Values(), "token refresh")
	if err != nil {
		return nil, c.refreshFailed(err)
	}
	if !resp.OK() {
		return nil, c.refreshFailed(autherr.FromResponse(resp.StatusCode, resp.Body, "token refresh failed"))
	}

	var tr oauth2.TokenResponse
	if err := resp.DecodeJSON(&tr); err != nil {
		return nil, c.refreshFailed(autherr.Wrap(autherr.KindNetwork, err, "refresh response malformed"))
	}

	if err := c.StoreTokens(ctx, &tr); err != nil {
		return nil, c.refreshFailed(err)
	}

	c.bus.Emit(events.Event{Type: events.TokenRefreshed, Tokens: &tr})
	return &tr, nil
}

func (c *Client) refreshFailed(err error) error {
	c.bus.Emit(events.Event{Type: events.TokenExpired, Err: err})
	return err
}
