package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// RelayClient implements ports.TokenExchanger by calling the token exchange
// relay over HTTP. The client runtime never holds the confidential secret;
// the relay performs the actual provider exchange.
type RelayClient struct {
	endpoint   string
	httpClient *http.Client
}

func NewRelayClient(endpoint string, timeout time.Duration) *RelayClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RelayClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *RelayClient) Exchange(ctx context.Context, input ports.ExchangeInput) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"code":         input.Code,
		"redirectUri":  input.RedirectURI,
		"codeVerifier": input.CodeVerifier,
		"provider":     input.Provider,
	})
	if err != nil {
		return "", fmt.Errorf("relay: encode exchange payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("relay: create exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Kind: domain.TokenExchangeFailed, Details: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ProviderError{
			Kind:    domain.TokenExchangeFailed,
			Status:  resp.StatusCode,
			Details: string(body),
		}
	}

	var result struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Username == "" {
		return "", &domain.ProviderError{
			Kind:    domain.IdentityResolutionFailed,
			Details: "relay returned no username",
		}
	}

	return result.Username, nil
}
