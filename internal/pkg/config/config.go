package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Placeholder credential values shipped in the sample configuration. An
// operation that would need them must fail closed instead of proceeding.
const (
	PlaceholderClientID     = "YOUR_CLIENT_ID"
	PlaceholderClientSecret = "YOUR_CLIENT_SECRET"
)

type Config struct {
	Port       string `env:"PORT,          default=8080"`
	Env        string `env:"ENV,           default=development"`
	LogLevel   string `env:"LOG_LEVEL,     default=info"`
	StaticRoot string `env:"STATIC_ROOT,   default=./web"`

	// StoreBackend selects the durable key-value backend: redis or mongo.
	StoreBackend string `env:"STORE_BACKEND, default=redis"`

	OAuth   OAuthConfig
	Session SessionConfig
	Pricing PricingConfig
	Admin   AdminConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type OAuthConfig struct {
	// DisableLoginForTesting replaces the provider round-trip with the bare
	// username test login.
	DisableLoginForTesting bool          `env:"OAUTH_DISABLE_LOGIN_FOR_TESTING, default=false"`
	ClientID               string        `env:"OAUTH_CLIENT_ID"`
	ClientSecret           string        `env:"OAUTH_CLIENT_SECRET"`
	RedirectURI            string        `env:"OAUTH_REDIRECT_URI"`
	Scope                  string        `env:"OAUTH_SCOPE,         default=openid profile"`
	ResponseType           string        `env:"OAUTH_RESPONSE_TYPE, default=code"`
	UsePKCE                bool          `env:"OAUTH_USE_PKCE,      default=true"`
	AuthorizeURL           string        `env:"OAUTH_AUTHORIZE_URL"`
	TokenURL               string        `env:"OAUTH_TOKEN_URL"`
	UserInfoURL            string        `env:"OAUTH_USERINFO_URL"`
	TokenExchangeEndpoint  string        `env:"OAUTH_TOKEN_EXCHANGE_ENDPOINT, default=/api/oauth/exchange"`
	ProviderName           string        `env:"OAUTH_PROVIDER_NAME, default=generic"`
	ProviderTimeout        time.Duration `env:"OAUTH_PROVIDER_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	TTLMinutes int `env:"SESSION_TTL_MINUTES, default=30"`
}

type PricingConfig struct {
	MinStartPrice   int64   `env:"PRICING_MIN_START_PRICE, default=1"`
	MaxStartPrice   int64   `env:"PRICING_MAX_START_PRICE, default=1000000"`
	DefaultBidSteps []int64 `env:"PRICING_DEFAULT_BID_STEPS, default=10,50,100"`
}

type AdminConfig struct {
	// AdminUsernames grants the admin flag on first identity resolution
	// (matched case-insensitively).
	AdminUsernames []string `env:"ADMIN_USERNAMES, default=admin"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=eetrade"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Validate fails fast on structurally broken configuration. Placeholder
// credentials are deliberately not an error here: the operations that need
// them fail closed at call time so the rest of the app stays usable.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "redis", "mongo":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("config: session ttl must be positive, got %d", c.Session.TTLMinutes)
	}
	if c.Pricing.MinStartPrice > c.Pricing.MaxStartPrice {
		return fmt.Errorf("config: pricing bounds inverted: min %d > max %d",
			c.Pricing.MinStartPrice, c.Pricing.MaxStartPrice)
	}
	return nil
}

// ClientIDUsable reports whether a real client id is configured.
func (o OAuthConfig) ClientIDUsable() bool {
	return o.ClientID != "" && o.ClientID != PlaceholderClientID
}

// SecretUsable reports whether a real client secret is configured.
func (o OAuthConfig) SecretUsable() bool {
	return o.ClientSecret != "" && o.ClientSecret != PlaceholderClientSecret
}

// TTL returns the configured session lifetime as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// IsAdminUsername reports whether username is in the configured admin list,
// compared case-insensitively.
func (a AdminConfig) IsAdminUsername(username string) bool {
	for _, entry := range a.AdminUsernames {
		if strings.EqualFold(entry, username) {
			return true
		}
	}
	return false
}
