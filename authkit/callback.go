package authkit

import (
	"context"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/users"
)

// HandleCallback completes a pending login: validates the CSRF state,
// exchanges the code for tokens, persists them, removes the pending
// transaction, fetches the profile (forcing a cache write) and emits
// user_logged_in.
func (c *Client) HandleCallback(ctx context.Context, code, state string) (*users.User, error) {
	if err := c.verifyState(ctx, state); err != nil {
		c.cleanupPending(ctx)
		return nil, err
	}

	tr, err := c.exchange(ctx, code)
	if err != nil {
		c.cleanupPending(ctx)
		return nil, err
	}

	if err := c.StoreTokens(ctx, tr); err != nil {
		c.cleanupPending(ctx)
		return nil, err
	}
	c.cleanupPending(ctx)

	user, err := c.fetchProfile(ctx)
	if err != nil {
		return nil, err
	}

	c.bus.Emit(events.Event{Type: events.UserLoggedIn, User: user})
	return user, nil
}

// ExchangeAuthorizationCode is the headless counterpart of HandleCallback
// for callers pairing it with AuthorizationURL: identical validation and
// storage side effects, no browser involvement.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code, state string) (*users.User, error) {
	return c.HandleCallback(ctx, code, state)
}

func (c *Client) verifyState(ctx context.Context, state string) error {
	stored, ok, err := c.storageGet(ctx, storage.KeyOAuthState)
	if err != nil {
		return err
	}
	if !ok {
		return autherr.New(autherr.KindAuthentication, "no pending login transaction")
	}
	if state == "" || state != stored {
		return autherr.New(autherr.KindAuthentication, "state parameter mismatch").WithCode(autherr.CodeCSRFMismatch)
	}
	return nil
}

// exchange posts the authorization code to the token endpoint.
func (c *Client) exchange(ctx context.Context, code string) (*oauth2.TokenResponse, error) {
	req := &oauth2.TokenRequest{
		GrantType:    oauth2.AuthorizationCodeGrant,
		Code:         code,
		RedirectURI:  c.cfg.RedirectURI,
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	}
	if c.cfg.UsePKCE {
		if verifier, ok, err := c.storageGet(ctx, storage.KeyPKCEVerifier); err != nil {
			return nil, err
		} else if ok {
			req.CodeVerifier = verifier
		}
	}

	resp, err := c.postForm(ctx, c.endpointURL(c.cfg.Endpoints.Token), req.Values(), "token exchange")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, autherr.FromResponse(resp.StatusCode, resp.Body, "token exchange failed")
	}

	var tr oauth2.TokenResponse
	if err := resp.DecodeJSON(&tr); err != nil {
		return nil, autherr.Wrap(autherr.KindNetwork, err, "token response malformed")
	}

	if c.cfg.ValidateIDToken && tr.IDToken != "" {
		if err := c.verifyIDToken(ctx, tr.IDToken); err != nil {
			return nil, err
		}
	}
	return &tr, nil
}
