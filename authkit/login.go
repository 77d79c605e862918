package authkit

import (
	"context"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/browser"
	"github.com/jrsteele09/go-authkit/deeplink"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/jrsteele09/go-authkit/pkce"
	"github.com/jrsteele09/go-authkit/storage"
	"github.com/jrsteele09/go-authkit/users"
)

// AuthorizationURL starts a pending OAuth transaction: it generates and
// persists a fresh CSRF state (and PKCE verifier when enabled) and returns
// the authorization URL. Headless counterpart of Login for callers driving
// their own browser UI. A second call overwrites the pending transaction.
func (c *Client) AuthorizationURL(ctx context.Context) (string, error) {
	state, err := pkce.NewState()
	if err != nil {
		return "", autherr.Wrap(autherr.KindAuthentication, err, "state generation failed")
	}
	if err := c.storageSet(ctx, storage.KeyOAuthState, state); err != nil {
		return "", err
	}

	params := &oauth2.AuthorizationParameters{
		ClientID:    c.cfg.ClientID,
		RedirectURI: c.cfg.RedirectURI,
		Scopes:      c.cfg.Scopes,
		State:       state,
	}

	if c.cfg.UsePKCE {
		verifier, err := pkce.NewVerifier()
		if err != nil {
			return "", autherr.Wrap(autherr.KindAuthentication, err, "verifier generation failed")
		}
		if err := c.storageSet(ctx, storage.KeyPKCEVerifier, verifier); err != nil {
			return "", err
		}
		challenge, err := pkce.Challenge(verifier, c.cfg.PKCEMethod)
		if err != nil {
			return "", autherr.Wrap(autherr.KindAuthentication, err, "challenge derivation failed")
		}
		params.CodeChallenge = challenge
		params.CodeChallengeMethod = c.cfg.PKCEMethod
	}

	return c.endpointURL(c.cfg.Endpoints.Authorize) + "?" + params.Values().Encode(), nil
}

// Login runs the full interactive flow: authorization URL, external browser
// session, callback validation, code exchange, profile fetch. Blocks until
// the browser session resolves or ctx is done. Every failure path removes
// the pending transaction keys and emits auth_error.
func (c *Client) Login(ctx context.Context) (*users.User, error) {
	if c.opener == nil {
		return nil, autherr.New(autherr.KindConfiguration, "no browser opener configured")
	}

	authURL, err := c.AuthorizationURL(ctx)
	if err != nil {
		return nil, c.abortLogin(ctx, err)
	}
	c.log.Debug().Str("url", authURL).Msg("opening browser session")

	result, err := c.opener.Open(ctx, authURL)
	if err != nil {
		return nil, c.abortLogin(ctx, autherr.Wrap(autherr.KindAuthentication, err, "browser session failed"))
	}
	if result.Outcome == browser.OutcomeCancel {
		return nil, c.abortLogin(ctx, autherr.New(autherr.KindAuthentication, "cancelled by user").WithCode(autherr.CodeCancelled))
	}

	cb, err := deeplink.Parse(result.CallbackURL)
	if err != nil {
		return nil, c.abortLogin(ctx, err)
	}
	if provErr := cb.Err(); provErr != nil {
		return nil, c.abortLogin(ctx, provErr)
	}
	if cb.Code == "" || cb.State == "" {
		return nil, c.abortLogin(ctx,
			autherr.New(autherr.KindAuthentication, "callback missing code or state").WithCode(autherr.CodeMissingCallback))
	}

	user, err := c.HandleCallback(ctx, cb.Code, cb.State)
	if err != nil {
		return nil, c.abortLogin(ctx, err)
	}
	return user, nil
}

// abortLogin is the single rejection path: pending secrets are always
// removed, auth_error is always emitted.
func (c *Client) abortLogin(ctx context.Context, err error) error {
	c.cleanupPending(ctx)
	c.bus.Emit(events.Event{Type: events.AuthError, Err: err})
	return err
}

// cleanupPending removes the CSRF state and PKCE verifier. Best effort:
// a failed removal is logged, never propagated, so an aborted login cannot
// shadow its own cause.
func (c *Client) cleanupPending(ctx context.Context) {
	if err := c.storageRemove(ctx, storage.KeyOAuthState); err != nil {
		c.log.Warn().Err(err).Msg("failed to remove pending state")
	}
	if err := c.storageRemove(ctx, storage.KeyPKCEVerifier); err != nil {
		c.log.Warn().Err(err).Msg("failed to remove pending verifier")
	}
}
