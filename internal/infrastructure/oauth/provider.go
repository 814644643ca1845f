// Package oauth talks to the identity provider's token and identity endpoints
// on behalf of the relay, and to the relay on behalf of the client runtime.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eetrade/marketplace/internal/core/domain"
)

// usernameFields is the fixed priority order for extracting a username from
// the identity record.
var usernameFields = []string{"preferred_username", "username", "name", "sub", "id"}

// ProviderClient implements ports.IdentityProvider against a standard OAuth2
// token endpoint and a JSON identity endpoint. It is the only component that
// ever sees the confidential client secret.
type ProviderClient struct {
	tokenURL     string
	userInfoURL  string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewProviderClient builds a provider client with a bounded per-request
// timeout. Authorization codes are single-use, so a timed-out exchange is
// surfaced as a failure and never retried.
func NewProviderClient(tokenURL, userInfoURL, clientID, clientSecret string, timeout time.Duration) *ProviderClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProviderClient{
		tokenURL:     tokenURL,
		userInfoURL:  userInfoURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (p *ProviderClient) ExchangeCode(ctx context.Context, code, redirectURI, codeVerifier string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
		"code_verifier": {codeVerifier},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("oauth: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.TokenExchangeFailed, Details: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.ProviderError{
			Kind:    domain.TokenExchangeFailed,
			Status:  resp.StatusCode,
			Details: string(body),
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil || tokenResp.AccessToken == "" {
		return "", &domain.ProviderError{
			Kind:    domain.TokenExchangeFailed,
			Status:  resp.StatusCode,
			Details: "token endpoint returned no access_token",
		}
	}

	return tokenResp.AccessToken, nil
}

func (p *ProviderClient) ResolveUsername(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("oauth: create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.IdentityResolutionFailed, Details: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.ProviderError{
			Kind:    domain.IdentityResolutionFailed,
			Status:  resp.StatusCode,
			Details: string(body),
		}
	}

	var identity map[string]any
	if err := json.Unmarshal(body, &identity); err != nil {
		return "", &domain.ProviderError{
			Kind:    domain.IdentityResolutionFailed,
			Details: "identity endpoint returned invalid JSON",
		}
	}

	for _, field := range usernameFields {
		if name := stringValue(identity[field]); name != "" {
			return name, nil
		}
	}
	return "", &domain.ProviderError{
		Kind:    domain.IdentityResolutionFailed,
		Details: "identity record carries no usable username field",
	}
}

// stringValue renders a JSON field as a username. Subject identifiers are
// numeric at some providers.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
