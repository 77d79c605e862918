package authkit

import (
	"context"

	"github.com/jrsteele09/go-authkit/autherr"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/users"
)

// Register creates a new account. Input is validated locally before any
// network call; this is plain input validation, not part of the
// authenticated session. Emits user_registered on success.
func (c *Client) Register(ctx context.Context, reg users.Registration) (*users.RegistrationResponse, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.http.PostJSON(ctx, c.endpointURL(c.cfg.Endpoints.Register), reg)
	if err != nil {
		return nil, c.networkFailure(err, "registration")
	}
	if !resp.OK() {
		return nil, autherr.FromResponse(resp.StatusCode, resp.Body, "registration failed")
	}

	var rr users.RegistrationResponse
	if err := resp.DecodeJSON(&rr); err != nil {
		return nil, autherr.Wrap(autherr.KindNetwork, err, "registration response malformed")
	}

	c.bus.Emit(events.Event{Type: events.UserRegistered, Registration: &rr})
	return &rr, nil
}
