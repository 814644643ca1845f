package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		StoreBackend: "redis",
		Session:      SessionConfig{TTLMinutes: 30},
		Pricing:      PricingConfig{MinStartPrice: 1, MaxStartPrice: 1000000},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.StoreBackend = "etcd"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown store backend must be rejected")
	}

	cfg = validConfig()
	cfg.Session.TTLMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("non-positive session ttl must be rejected")
	}

	cfg = validConfig()
	cfg.Pricing.MinStartPrice = 100
	cfg.Pricing.MaxStartPrice = 50
	if err := cfg.Validate(); err == nil {
		t.Fatal("inverted pricing bounds must be rejected")
	}
}

func TestValidate_PlaceholderCredentialsAreNotFatal(t *testing.T) {
	cfg := validConfig()
	cfg.OAuth.ClientID = PlaceholderClientID
	cfg.OAuth.ClientSecret = PlaceholderClientSecret

	// Placeholders fail closed at operation time, not at startup.
	if err := cfg.Validate(); err != nil {
		t.Fatalf("placeholder credentials must not fail validation: %v", err)
	}
	if cfg.OAuth.ClientIDUsable() {
		t.Fatal("placeholder client id reported usable")
	}
	if cfg.OAuth.SecretUsable() {
		t.Fatal("placeholder secret reported usable")
	}
}

func TestCredentialUsability(t *testing.T) {
	o := OAuthConfig{ClientID: "real", ClientSecret: "real"}
	if !o.ClientIDUsable() || !o.SecretUsable() {
		t.Fatal("real credentials reported unusable")
	}

	o = OAuthConfig{}
	if o.ClientIDUsable() || o.SecretUsable() {
		t.Fatal("empty credentials reported usable")
	}
}

func TestSessionTTL(t *testing.T) {
	s := SessionConfig{TTLMinutes: 45}
	if s.TTL() != 45*time.Minute {
		t.Fatalf("unexpected ttl: %v", s.TTL())
	}
}

func TestIsAdminUsername(t *testing.T) {
	a := AdminConfig{AdminUsernames: []string{"admin", "Chief"}}

	if !a.IsAdminUsername("admin") {
		t.Fatal("exact match rejected")
	}
	if !a.IsAdminUsername("CHIEF") {
		t.Fatal("match must be case-insensitive")
	}
	if a.IsAdminUsername("alice") {
		t.Fatal("unlisted username accepted")
	}
	if (AdminConfig{}).IsAdminUsername("admin") {
		t.Fatal("empty list must grant nothing")
	}
}
