package domain

import (
	"errors"
	"fmt"
)

var ErrNotAuthenticated = errors.New("not authenticated")
var ErrAccountBlocked = errors.New("account is blocked")
var ErrSessionExpired = errors.New("session expired")
var ErrCsrfValidation = errors.New("oauth state mismatch")
var ErrInvalidBid = errors.New("invalid bid")
var ErrAuctionNotFound = errors.New("auction not found")
var ErrUserNotFound = errors.New("user not found")
var ErrForbidden = errors.New("access forbidden")
var ErrMissingCode = errors.New("missing authorization code")
var ErrCorruptState = errors.New("persisted state is corrupt")
var ErrStoreConflict = errors.New("concurrent store modification")
var ErrKeyNotFound = errors.New("key not found")

// ConfigError reports missing or placeholder configuration. Hint is safe to
// show to the user; it never contains credentials.
type ConfigError struct {
	Hint string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Hint
}

// ValidationError reports an auction-creation bounds violation and echoes the
// configured bounds back to the caller.
type ValidationError struct {
	Field string
	Min   int64
	Max   int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, e.Max)
}

// ProviderErrorKind classifies relay-side failures talking to the identity
// provider.
type ProviderErrorKind string

const (
	// ProviderRejected covers an error parameter reported on the callback.
	ProviderRejected ProviderErrorKind = "provider_rejected"
	// TokenExchangeFailed covers a failed or token-less token-endpoint response.
	TokenExchangeFailed ProviderErrorKind = "token_exchange_failed"
	// IdentityResolutionFailed covers an identity response with no usable username.
	IdentityResolutionFailed ProviderErrorKind = "identity_resolution_failed"
)

// ProviderError carries provider diagnostics verbatim. Details must never
// include the confidential client secret.
type ProviderError struct {
	Kind    ProviderErrorKind
	Status  int
	Details string
}

func (e *ProviderError) Error() string {
	if e.Details == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}
