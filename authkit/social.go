package authkit

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/browser"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/users"
)

// LoginWithSocial opens the server's social-login URL for a provider and,
// once the browser session resolves, fetches and emits the current user.
//
// Unlike Login, no code exchange happens on this path: it relies on the
// authorization server having established a session during the redirect.
// Known structural gap, kept deliberately; see DESIGN.md.
func (c *Client) LoginWithSocial(ctx context.Context, provider string) (*users.User, error) {
	if provider == "" {
		return nil, autherr.New(autherr.KindValidation, "provider is required")
	}
	if c.opener == nil {
		return nil, autherr.New(autherr.KindConfiguration, "no browser opener configured")
	}

	socialURL := c.endpointURL(c.cfg.Endpoints.Social) + "/" + url.PathEscape(provider) +
		"?redirect_uri=" + url.QueryEscape(c.cfg.RedirectURI)

	result, err := c.opener.Open(ctx, socialURL)
	if err != nil {
		wrapped := autherr.Wrap(autherr.KindAuthentication, err, "social browser session failed")
		c.bus.Emit(events.Event{Type: events.AuthError, Err: wrapped})
		return nil, wrapped
	}
	if result.Outcome == browser.OutcomeCancel {
		cancelled := autherr.New(autherr.KindAuthentication, "cancelled by user").WithCode(autherr.CodeCancelled)
		c.bus.Emit(events.Event{Type: events.AuthError, Err: cancelled})
		return nil, cancelled
	}

	user, err := c.CurrentUser(ctx, true)
	if err != nil {
		c.bus.Emit(events.Event{Type: events.AuthError, Err: err})
		return nil, err
	}

	c.bus.Emit(events.Event{Type: events.UserLoggedIn, User: user})
	return user, nil
}
