package authkit

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-authkit/autherr"
)

// verifyIDToken checks the id_token's signature and claims against the
// issuer's discovery document. Discovery runs once per Client.
func (c *Client) verifyIDToken(ctx context.Context, rawIDToken string) error {
	c.oidcOnce.Do(func() {
		provider, err := oidc.NewProvider(ctx, c.cfg.IssuerURL)
		if err != nil {
			c.oidcErr = err
			return
		}
		c.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: c.cfg.ClientID})
	})
	if c.oidcErr != nil {
		return autherr.Wrap(autherr.KindAuthentication, c.oidcErr, "oidc discovery failed")
	}
	if _, err := c.oidcVerifier.Verify(ctx, rawIDToken); err != nil {
		return autherr.Wrap(autherr.KindAuthentication, err, "id token verification failed")
	}
	return nil
}

// jwtExpiry extracts the exp claim from a JWT access token without
// verifying the signature. Only used as an expiry hint when the server
// omits expires_in; the token is never trusted further on this basis.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
