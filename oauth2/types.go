package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: Authorization Code Flow (the SDK's primary flow)
	// Token request includes: code, client_id, redirect_uri, code_verifier (if PKCE)
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Used in: token refresh without re-authenticating the user
	// Token request includes: refresh_token, client_id, client_secret (if confidential)
	RefreshTokenGrant GrantType = "refresh_token"
)

// ResponseType represents the OAuth 2.0 response type requested at the
// authorization endpoint. The SDK only implements the code flow.
type ResponseType string

const (
	// CodeResponseType requests an authorization code from the
	// authorization endpoint, to be exchanged at the token endpoint.
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (RFC 7636) code challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 derives the challenge as
	// BASE64URL(SHA256(code_verifier)). The default and recommended method.
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypePlain sends the verifier as the challenge unchanged.
	// Only useful against passive attackers; kept for servers that do not
	// support S256.
	CodeMethodTypePlain CodeMethodType = "plain"
)
