// Package deeplink parses OAuth callback URLs delivered to the app by the
// host platform (custom scheme, universal link, or loopback redirect).
package deeplink

import (
	"net/url"

	"github.com/jrsteele09/go-authkit/autherr"
)

// Callback is the typed view of a callback URL's query parameters.
type Callback struct {
	Code             string
	State            string
	ErrorCode        string
	ErrorDescription string
}

// Parse extracts code/state/error parameters from a callback URL. Supports
// both query ("?code=...") and fragment ("#code=...") delivery.
func Parse(rawURL string) (*Callback, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindDeepLink, err, "malformed callback URL")
	}

	params := u.Query()
	if len(params) == 0 && u.Fragment != "" {
		params, err = url.ParseQuery(u.Fragment)
		if err != nil {
			return nil, autherr.Wrap(autherr.KindDeepLink, err, "malformed callback fragment")
		}
	}

	return &Callback{
		Code:             params.Get("code"),
		State:            params.Get("state"),
		ErrorCode:        params.Get("error"),
		ErrorDescription: params.Get("error_description"),
	}, nil
}

// Err returns the authentication failure the provider signalled, or nil.
func (c *Callback) Err() error {
	if c.ErrorCode == "" {
		return nil
	}
	msg := c.ErrorCode
	if c.ErrorDescription != "" {
		msg = c.ErrorCode + ": " + c.ErrorDescription
	}
	return autherr.New(autherr.KindAuthentication, msg).WithCode(autherr.CodeProviderError)
}
