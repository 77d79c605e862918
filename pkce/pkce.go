// Package pkce generates the random material the Authorization Code flow
// depends on: PKCE code verifiers and challenges (RFC 7636) and CSRF state
// tokens. All randomness comes from crypto/rand.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/jrsteele09/go-authkit/oauth2"
	"github.com/pkg/errors"
)

const (
	// verifierByteLength yields a 43-character base64url verifier, the
	// RFC 7636 minimum.
	verifierByteLength = 32

	stateByteLength = 32
)

var ErrUnsupportedMethod = errors.New("unsupported code challenge method")

// NewVerifier returns a fresh PKCE code verifier: base64url, no padding,
// 43 characters.
func NewVerifier() (string, error) {
	b := make([]byte, verifierByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[NewVerifier] rand.Read")
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}

// Challenge derives the code challenge for a verifier. S256 hashes the
// verifier; plain returns it unchanged.
func Challenge(verifier string, method oauth2.CodeMethodType) (string, error) {
	switch method {
	case oauth2.CodeMethodTypeS256:
		hash := sha256.Sum256([]byte(verifier))
		return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:]), nil
	case oauth2.CodeMethodTypePlain:
		return verifier, nil
	}
	return "", errors.Wrapf(ErrUnsupportedMethod, "[Challenge] %q", method)
}

// NewState returns a fresh CSRF state token for the authorization request.
func NewState() (string, error) {
	b := make([]byte, stateByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[NewState] rand.Read")
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}
