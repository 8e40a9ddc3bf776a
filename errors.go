package oauth

import "errors"

// Handshake errors. Anything detectable before the popup opens is returned
// synchronously; anything during the wait settles the pending result exactly
// once. Callback-side failures are never returned to the caller, only
// converted into posted error messages.
var (
	// Pre-flight errors
	ErrMissingConfig = errors.New("missing configuration")
	ErrPopupBlocked  = errors.New("popup blocked")

	// Waiter errors
	ErrProvider  = errors.New("provider returned an error")
	ErrCancelled = errors.New("authorization cancelled")
	ErrTimeout   = errors.New("authorization timed out")

	// Callback errors, surfaced only as posted messages
	ErrMissingParams = errors.New("callback missing required parameters")
	ErrStateMismatch = errors.New("state mismatch, possible cross-site request forgery")
)
