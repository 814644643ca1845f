package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

func TestRelayClient_ForwardsPayloadWithoutSecret(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"username": "alice"})
	}))
	t.Cleanup(srv.Close)

	client := NewRelayClient(srv.URL, 5*time.Second)
	username, err := client.Exchange(context.Background(), ports.ExchangeInput{
		Code:         "c1",
		RedirectURI:  "https://app.example/cb",
		CodeVerifier: "v1",
		Provider:     "example",
	})
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if username != "alice" {
		t.Fatalf("unexpected username: %s", username)
	}

	if got["code"] != "c1" || got["codeVerifier"] != "v1" || got["provider"] != "example" {
		t.Fatalf("payload not forwarded: %v", got)
	}
	if _, ok := got["clientSecret"]; ok {
		t.Fatal("relay payload must never carry a client secret")
	}
}

func TestRelayClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"missing code"}`, http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	client := NewRelayClient(srv.URL, 5*time.Second)
	_, err := client.Exchange(context.Background(), ports.ExchangeInput{Code: "c1"})

	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Kind != domain.TokenExchangeFailed || pe.Status != http.StatusBadRequest {
		t.Fatalf("unexpected error: %+v", pe)
	}
}

func TestRelayClient_EmptyUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := NewRelayClient(srv.URL, 5*time.Second)
	_, err := client.Exchange(context.Background(), ports.ExchangeInput{Code: "c1"})

	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.Kind != domain.IdentityResolutionFailed {
		t.Fatalf("unexpected kind: %s", pe.Kind)
	}
}
