package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
	"github.com/eetrade/marketplace/internal/pkg/config"
)

var errEmptyUsername = errors.New("username must not be empty")

// LoginService drives the Authorization-Code-with-PKCE flow on the client
// side: it builds the authorization redirect, validates the callback, and
// hands the code to the token exchange relay. The verifier never travels to
// the authorization endpoint, only to the relay.
type LoginService struct {
	oauth     config.OAuthConfig
	admin     config.AdminConfig
	flows     ports.FlowStateStore
	store     ports.DomainStore
	sessions  ports.SessionService
	exchanger ports.TokenExchanger
	log       zerolog.Logger
}

func NewLoginService(
	oauth config.OAuthConfig,
	admin config.AdminConfig,
	flows ports.FlowStateStore,
	store ports.DomainStore,
	sessions ports.SessionService,
	exchanger ports.TokenExchanger,
	log zerolog.Logger,
) *LoginService {
	return &LoginService{
		oauth:     oauth,
		admin:     admin,
		flows:     flows,
		store:     store,
		sessions:  sessions,
		exchanger: exchanger,
		log:       log,
	}
}

func (s *LoginService) BeginLogin(ctx context.Context) (string, error) {
	if s.oauth.DisableLoginForTesting {
		return "", &domain.ConfigError{Hint: "OAuth login is disabled in the configuration; use the test login"}
	}
	if !s.oauth.ClientIDUsable() || s.oauth.RedirectURI == "" {
		return "", &domain.ConfigError{Hint: "configure clientId, redirectUri and scope before logging in"}
	}

	flow := &domain.FlowState{CSRFState: uuid.NewString()}

	params := url.Values{
		"response_type": {s.oauth.ResponseType},
		"client_id":     {s.oauth.ClientID},
		"redirect_uri":  {s.oauth.RedirectURI},
		"scope":         {s.oauth.Scope},
		"state":         {flow.CSRFState},
	}

	if s.oauth.UsePKCE {
		flow.PKCEVerifier = newPKCEVerifier()
		params.Set("code_challenge", codeChallenge(flow.PKCEVerifier))
		params.Set("code_challenge_method", "S256")
	}

	// The flow state must be durable before the browser navigates away.
	if err := s.flows.Save(ctx, flow); err != nil {
		return "", err
	}

	return s.oauth.AuthorizeURL + "?" + params.Encode(), nil
}

func (s *LoginService) CompleteCallback(ctx context.Context, rawURL string) (*ports.CallbackResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse callback url: %w", err)
	}

	query := parsed.Query()
	code := query.Get("code")
	callbackState := query.Get("state")
	providerErr := query.Get("error")

	result := &ports.CallbackResult{CleanURL: stripOAuthParams(parsed)}

	if providerErr != "" {
		s.clearFlow(ctx)
		return result, &domain.ProviderError{Kind: domain.ProviderRejected, Details: providerErr}
	}

	// An ordinary page load carries neither code nor state.
	if code == "" || callbackState == "" {
		result.CleanURL = rawURL
		return result, nil
	}

	flow, err := s.flows.Load(ctx)
	if err != nil {
		return nil, err
	}
	if flow == nil || flow.CSRFState != callbackState {
		// The exchange must never run on a state mismatch.
		s.clearFlow(ctx)
		return result, domain.ErrCsrfValidation
	}

	username, exchangeErr := s.exchanger.Exchange(ctx, ports.ExchangeInput{
		Code:         code,
		RedirectURI:  s.oauth.RedirectURI,
		CodeVerifier: flow.PKCEVerifier,
		Provider:     s.oauth.ProviderName,
	})

	// Single-use: the flow values are cleared whether or not the exchange
	// succeeded, so back-navigation cannot replay the code.
	s.clearFlow(ctx)

	if exchangeErr != nil {
		return result, exchangeErr
	}

	user, err := s.ensureUser(ctx, username)
	if err != nil {
		return result, err
	}
	if _, err := s.sessions.Issue(ctx, user); err != nil {
		return result, err
	}

	s.log.Info().Str("username", username).Msg("oauth login completed")
	result.Completed = true
	result.Username = username
	return result, nil
}

func (s *LoginService) TestLogin(ctx context.Context, username string) error {
	if !s.oauth.DisableLoginForTesting {
		return &domain.ConfigError{Hint: "test login is only available when OAuth login is disabled"}
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return errEmptyUsername
	}

	user, err := s.ensureUser(ctx, username)
	if err != nil {
		return err
	}
	_, err = s.sessions.Issue(ctx, user)
	return err
}

// ensureUser returns the user with the given username, creating it on first
// resolution. The admin flag comes from the configured admin username list.
func (s *LoginService) ensureUser(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.store.Update(ctx, func(snap *domain.Snapshot) error {
		if existing := snap.UserByUsername(username); existing != nil {
			user = *existing
			return nil
		}
		user = domain.User{
			ID:       "u-" + uuid.NewString(),
			Username: username,
			IsAdmin:  s.admin.IsAdminUsername(username),
		}
		snap.Users = append(snap.Users, user)
		s.log.Info().Str("username", username).Bool("is_admin", user.IsAdmin).Msg("user created")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LoginService) clearFlow(ctx context.Context) {
	if err := s.flows.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear oauth flow state")
	}
}

// stripOAuthParams removes code, state and error from the visible address so
// the callback cannot be replayed via history or link sharing.
func stripOAuthParams(u *url.URL) string {
	query := u.Query()
	query.Del("code")
	query.Del("state")
	query.Del("error")
	u.RawQuery = query.Encode()
	return u.String()
}

// newPKCEVerifier returns a high-entropy verifier, base64url-encoded without
// padding.
func newPKCEVerifier() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("pkce: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// codeChallenge derives the S256 challenge for a verifier.
func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
