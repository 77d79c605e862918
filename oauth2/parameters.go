package oauth2

import (
	"net/url"
	"strings"
)

// AuthorizationParameters holds the query parameters the SDK sends to the
// authorization endpoint when starting an Authorization Code flow.
type AuthorizationParameters struct {
	// ClientID identifies the application requesting authorization.
	ClientID string

	// RedirectURI is where the authorization response will be sent. Must
	// exactly match a URI pre-registered with the server.
	RedirectURI string

	// Scopes are the permissions being requested, joined with spaces on
	// the wire. Order is preserved; deduplication is the caller's concern.
	Scopes []string

	// State is the opaque CSRF token echoed back in the callback. The SDK
	// always sends one and validates it on return.
	State string

	// CodeChallenge is the PKCE challenge derived from the code verifier.
	// Empty when PKCE is disabled.
	CodeChallenge string

	// CodeChallengeMethod is how CodeChallenge was derived ("S256" or
	// "plain"). Only sent alongside CodeChallenge.
	CodeChallengeMethod CodeMethodType
}

// Values encodes the parameters as authorization endpoint query values.
// response_type is always "code".
func (p *AuthorizationParameters) Values() url.Values {
	v := url.Values{}
	v.Set("client_id", p.ClientID)
	v.Set("response_type", string(CodeResponseType))
	v.Set("redirect_uri", p.RedirectURI)
	if len(p.Scopes) > 0 {
		v.Set("scope", strings.Join(p.Scopes, " "))
	}
	v.Set("state", p.State)
	if p.CodeChallenge != "" {
		v.Set("code_challenge", p.CodeChallenge)
		v.Set("code_challenge_method", string(p.CodeChallengeMethod))
	}
	return v
}

// TokenRequest holds the form fields for an OAuth2 token request. Fields are
// included in the wire form only when non-empty.
type TokenRequest struct {
	// GrantType selects the exchange: authorization_code or refresh_token.
	GrantType GrantType

	// Code is the authorization code from the callback. Authorization code
	// grant only; exchanged once, then invalid.
	Code string

	// RedirectURI must repeat the value used at the authorization endpoint.
	RedirectURI string

	// RefreshToken is the stored refresh token. Refresh grant only.
	RefreshToken string

	// ClientID identifies the OAuth2 client making the request.
	ClientID string

	// ClientSecret is sent only for confidential clients.
	// Security: never log this value.
	ClientSecret string

	// CodeVerifier is the PKCE verifier matching the code_challenge sent
	// at authorization time.
	CodeVerifier string
}

// Values encodes the request as an application/x-www-form-urlencoded body.
func (r *TokenRequest) Values() url.Values {
	v := url.Values{}
	v.Set("grant_type", string(r.GrantType))
	if r.Code != "" {
		v.Set("code", r.Code)
	}
	if r.RedirectURI != "" {
		v.Set("redirect_uri", r.RedirectURI)
	}
	if r.RefreshToken != "" {
		v.Set("refresh_token", r.RefreshToken)
	}
	v.Set("client_id", r.ClientID)
	if r.ClientSecret != "" {
		v.Set("client_secret", r.ClientSecret)
	}
	if r.CodeVerifier != "" {
		v.Set("code_verifier", r.CodeVerifier)
	}
	return v
}
