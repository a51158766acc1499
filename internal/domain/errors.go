package domain

import "errors"

// Error taxonomy for the audit & access-control core. Callers branch with
// errors.Is; wrapping preserves context.
var (
	// ErrAuthenticationFailed means the supplied credentials were rejected.
	// Recoverable: the caller may retry with different credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNoActiveSession means a session operation required a held identity
	// and none was present. Caller usage error, surfaced immediately.
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionNotInitialized means session operations were invoked before
	// a manager existed. Programmer error, never retried.
	ErrSessionNotInitialized = errors.New("session manager not initialized")

	// ErrAccessDenied is a role policy refusal. It is always audited before
	// being surfaced.
	ErrAccessDenied = errors.New("access denied")

	// ErrLoginInProgress guards against overlapping logins on one session.
	// The caller retries after backoff.
	ErrLoginInProgress = errors.New("login already in progress")
)
