package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/api/handler"
	"github.com/eetrade/marketplace/internal/core/ports"
	"github.com/eetrade/marketplace/internal/core/service"
	"github.com/eetrade/marketplace/internal/infrastructure/oauth"
	"github.com/eetrade/marketplace/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all relay routes
// registered. The relay is stateless: it serves the static assets, the health
// probes, the metrics endpoint and the confidential token exchange.
func NewRouter(cfg *config.Config, kv ports.KeyValue, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	provider := oauth.NewProviderClient(
		cfg.OAuth.TokenURL,
		cfg.OAuth.UserInfoURL,
		cfg.OAuth.ClientID,
		cfg.OAuth.ClientSecret,
		cfg.OAuth.ProviderTimeout,
	)
	exchangeService := service.NewExchangeService(cfg.OAuth, provider, log)
	exchangeHandler := handler.NewExchangeHandler(exchangeService)

	// --- OAuth relay ---
	e.POST("/api/oauth/exchange", exchangeHandler.Exchange)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(kv, cfg.StoreBackend)

	e.GET("/api/health", healthHandler.Liveness)
	e.GET("/api/health/ready", readinessHandler.Readiness)

	// --- Observability ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Static assets for the browser client ---
	e.Static("/", cfg.StaticRoot)

	return e
}
