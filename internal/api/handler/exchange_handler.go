package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eetrade/marketplace/internal/api/metrics"
	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// ExchangeHandler exposes the relay's single confidential operation.
type ExchangeHandler struct {
	service ports.ExchangeService
}

func NewExchangeHandler(service ports.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{service: service}
}

type exchangeRequest struct {
	Code         string `json:"code" validate:"required"`
	RedirectURI  string `json:"redirectUri"`
	CodeVerifier string `json:"codeVerifier"`
	Provider     string `json:"provider"`
}

type exchangeResponse struct {
	Username string `json:"username"`
}

// Exchange trades an authorization code for a resolved username.
//
// @Summary      Exchange an authorization code for a username
// @Tags         oauth
// @Accept       json
// @Produce      json
// @Param        body  body      exchangeRequest  true  "Authorization code, redirect URI and PKCE verifier"
// @Success      200   {object}  exchangeResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/oauth/exchange [post]
func (h *ExchangeHandler) Exchange(c echo.Context) error {
	var req exchangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.ExchangesTotal.WithLabelValues("missing_code").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	username, err := h.service.Exchange(c.Request().Context(), ports.ExchangeInput{
		Code:         req.Code,
		RedirectURI:  req.RedirectURI,
		CodeVerifier: req.CodeVerifier,
		Provider:     req.Provider,
	})

	outcome := exchangeOutcome(err)
	metrics.ExchangesTotal.WithLabelValues(outcome).Inc()
	metrics.ExchangeDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exchangeResponse{Username: username})
}

func exchangeOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *domain.ConfigError
	if errors.As(err, &ce) {
		return "misconfigured"
	}
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		if pe.Kind == domain.IdentityResolutionFailed {
			return "identity_failed"
		}
		return "exchange_failed"
	}
	if errors.Is(err, domain.ErrMissingCode) {
		return "missing_code"
	}
	return "error"
}
