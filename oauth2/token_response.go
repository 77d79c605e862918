package oauth2

import (
	"strings"
	"time"
)

// TokenResponse represents the response from an OAuth2 token request as
// defined in RFC 6749. Returned from the /token endpoint for both the
// authorization_code and refresh_token grants.
type TokenResponse struct {
	// AccessToken is the opaque token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// May be absent; servers that rotate refresh tokens return a new one
	// on every refresh grant.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OpenID Connect ID token, present only when the
	// "openid" scope was requested and the server supports OIDC.
	IDToken string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token, typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token, measured
	// from the moment the response was received.
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space-separated list of granted scopes. May be narrower
	// than the requested set.
	Scope string `json:"scope,omitempty"`
}

// ExpiresAt converts the relative expires_in hint into an absolute instant,
// anchored at now. Returns the zero time when the server sent no hint.
func (tr *TokenResponse) ExpiresAt(now time.Time) time.Time {
	if tr.ExpiresIn <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(tr.ExpiresIn) * time.Second)
}

// Scopes splits the granted scope string into its individual scopes.
func (tr *TokenResponse) Scopes() []string {
	if strings.TrimSpace(tr.Scope) == "" {
		return nil
	}
	return strings.Fields(tr.Scope)
}
