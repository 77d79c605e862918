package authkit

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-authkit/autherr"
)

// Introspection is the token metadata returned by the introspection
// endpoint (RFC 7662).
type Introspection struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}

// IntrospectToken asks the server whether the stored access token is still
// active.
func (c *Client) IntrospectToken(ctx context.Context) (*Introspection, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("token", token)

	resp, err := c.postForm(ctx, c.endpointURL(c.cfg.Endpoints.Introspect), form, "token introspection")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, autherr.FromResponse(resp.StatusCode, resp.Body, "token introspection failed")
	}

	var in Introspection
	if err := resp.DecodeJSON(&in); err != nil {
		return nil, autherr.Wrap(autherr.KindNetwork, err, "introspection response malformed")
	}
	return &in, nil
}
