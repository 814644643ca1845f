package ports

import "context"

// ExchangeInput is the payload the client runtime sends to the token exchange
// relay. The verifier travels only here, never to the authorization endpoint.
type ExchangeInput struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
	Provider     string
}

// TokenExchanger is the client-side view of the relay: it trades an
// authorization code for a resolved username across the trust boundary that
// holds the confidential secret.
type TokenExchanger interface {
	Exchange(ctx context.Context, input ExchangeInput) (username string, err error)
}

// IdentityProvider is the relay-side view of the OAuth provider.
type IdentityProvider interface {
	// ExchangeCode posts the authorization-code grant to the token endpoint
	// and returns the access token.
	ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (accessToken string, err error)

	// ResolveUsername calls the identity endpoint with the access token as a
	// bearer credential and extracts a username using the fixed field-priority
	// order: preferred_username, username, name, sub, id.
	ResolveUsername(ctx context.Context, accessToken string) (username string, err error)
}

// ExchangeService implements the relay's single operation.
type ExchangeService interface {
	Exchange(ctx context.Context, input ExchangeInput) (username string, err error)
}
