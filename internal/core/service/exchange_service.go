package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
	"github.com/eetrade/marketplace/internal/pkg/config"
)

// ExchangeService is the relay-side exchange operation: it validates its own
// configuration, trades the code for an access token, and resolves the
// identity. It holds no per-request state.
type ExchangeService struct {
	oauth    config.OAuthConfig
	provider ports.IdentityProvider
	log      zerolog.Logger
}

func NewExchangeService(oauth config.OAuthConfig, provider ports.IdentityProvider, log zerolog.Logger) *ExchangeService {
	return &ExchangeService{oauth: oauth, provider: provider, log: log}
}

func (s *ExchangeService) Exchange(ctx context.Context, input ports.ExchangeInput) (string, error) {
	if input.Code == "" {
		return "", domain.ErrMissingCode
	}

	// Fail closed on placeholder credentials instead of attempting a doomed
	// exchange against the provider.
	if !s.oauth.ClientIDUsable() || !s.oauth.SecretUsable() {
		return "", &domain.ConfigError{Hint: "OAuth is not fully configured (clientId/clientSecret)"}
	}

	accessToken, err := s.provider.ExchangeCode(ctx, input.Code, input.RedirectURI, input.CodeVerifier)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", input.Provider).Msg("token exchange failed")
		return "", err
	}

	username, err := s.provider.ResolveUsername(ctx, accessToken)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", input.Provider).Msg("identity resolution failed")
		return "", err
	}

	s.log.Info().Str("username", username).Str("provider", input.Provider).Msg("identity resolved")
	return username, nil
}
