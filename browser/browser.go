// Package browser defines the external browser-session collaborator the
// Session Core delegates to during login, plus a loopback implementation
// for CLI and desktop hosts.
package browser

import "context"

// Outcome is how the browser session resolved.
type Outcome string

const (
	// OutcomeSuccess: the user completed the flow and a callback URL was
	// captured.
	OutcomeSuccess Outcome = "success"

	// OutcomeCancel: the user dismissed the browser before completing.
	OutcomeCancel Outcome = "cancel"
)

// Result carries the resolution of an opened browser session. CallbackURL
// is set only on success.
type Result struct {
	Outcome     Outcome
	CallbackURL string
}

// Opener opens the system browser (or an in-app tab) at authURL and blocks
// until the flow resolves, the user cancels, or ctx is done. Implementations
// wrap host-platform APIs; the SDK ships a loopback opener for hosts that
// can listen on localhost.
type Opener interface {
	Open(ctx context.Context, authURL string) (*Result, error)
}
