// Package autherr defines the closed error taxonomy surfaced by the SDK.
// Every failure a caller can observe is an *Error with one of the Kind
// values below, optionally carrying a machine-readable code, the HTTP
// status and body that produced it, and the wrapped cause.
package autherr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies an SDK failure.
type Kind string

const (
	// KindConfiguration: a required construction field is missing or
	// invalid. Raised synchronously from New, never at first use.
	KindConfiguration Kind = "configuration"

	// KindAuthentication: login, CSRF or callback failures.
	KindAuthentication Kind = "authentication"

	// KindNetwork: a non-2xx response or a transport failure.
	KindNetwork Kind = "network"

	// KindToken: missing refresh token or a rate-limited refresh.
	KindToken Kind = "token"

	// KindValidation: bad registration input or malformed URLs.
	KindValidation Kind = "validation"

	// KindStorage: storage adapter read/write failure.
	KindStorage Kind = "storage"

	// KindDeepLink: a callback URL the deep-link parser rejected.
	KindDeepLink Kind = "deep_link"

	// KindBiometric: failures passed through from a biometric
	// collaborator. The SDK never raises these itself.
	KindBiometric Kind = "biometric"
)

// Machine-readable codes attached to common failures.
const (
	CodeCancelled           = "cancelled"
	CodeCSRFMismatch        = "csrf_mismatch"
	CodeMissingCallback     = "missing_code_or_state"
	CodeProviderError       = "provider_error"
	CodeMissingRefreshToken = "missing_refresh_token"
	CodeRateLimited         = "rate_limited"
)

// Error is the single base error type of the taxonomy.
type Error struct {
	Kind       Kind
	Message    string
	Code       string
	StatusCode int
	Body       string
	Details    map[string]any
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two taxonomy errors on Kind alone, so callers can write
// errors.Is(err, &Error{Kind: KindToken}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// New builds a taxonomy error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a taxonomy error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a taxonomy error around a cause. Returns nil when err is nil.
func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, cause: err}
}

// WithCode attaches a machine-readable code.
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithDetails attaches opaque details for the caller.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// KindOf returns the Kind of err, or the empty Kind when err is not part of
// the taxonomy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Kind("")
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// wireError is the standard OAuth error body shape (RFC 6749 §5.2).
type wireError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// FromResponse translates a non-2xx HTTP response into a Network error,
// preserving the status code and body and lifting the standard OAuth
// error/error_description fields when the body carries them.
func FromResponse(statusCode int, body []byte, message string) *Error {
	e := &Error{
		Kind:       KindNetwork,
		Message:    message,
		StatusCode: statusCode,
		Body:       string(body),
	}
	var we wireError
	if err := json.Unmarshal(body, &we); err == nil && we.Error != "" {
		e.Code = we.Error
		if we.ErrorDescription != "" {
			e.Message = fmt.Sprintf("%s: %s", message, we.ErrorDescription)
		}
	}
	return e
}

// Translate normalizes any failure into the taxonomy. Taxonomy errors pass
// through untouched; context cancellation and transport failures become
// Network errors.
func Translate(err error, message string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindNetwork, err, message).WithCode("request_cancelled")
	}
	return Wrap(KindNetwork, err, message)
}
