package ports

import "context"

// CallbackResult reports the outcome of processing one callback URL.
type CallbackResult struct {
	// Completed is false for an ordinary page load with no code/state pair.
	Completed bool
	// Username is set when a session was issued.
	Username string
	// CleanURL is the callback URL with code/state/error parameters stripped,
	// to be pushed into the visible address bar (prevents code replay).
	CleanURL string
}

// LoginService drives the OAuth2 Authorization-Code-with-PKCE flow.
type LoginService interface {
	// BeginLogin generates CSRF state (and, when PKCE is enabled, the
	// verifier/challenge pair), persists the flow state, and returns the
	// authorization redirect target.
	BeginLogin(ctx context.Context) (redirectURL string, err error)

	// CompleteCallback processes a callback URL once per page load, validating
	// CSRF state before any token exchange and clearing the persisted flow
	// values unconditionally afterwards.
	CompleteCallback(ctx context.Context, rawURL string) (*CallbackResult, error)

	// TestLogin signs in by bare username. Only available when OAuth login is
	// disabled for testing.
	TestLogin(ctx context.Context, username string) error
}
