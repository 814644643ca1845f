package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Details
// carries provider diagnostics verbatim and never the client secret.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Relay misconfiguration fails closed before the provider is contacted.
	var ce *domain.ConfigError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError, errorResponse{Error: ce.Hint}
	}

	// Provider-side failures propagate diagnostics, never the secret.
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return http.StatusBadGateway, errorResponse{Error: string(pe.Kind), Details: pe.Details}
	}

	if errors.Is(err, domain.ErrMissingCode) {
		return http.StatusBadRequest, errorResponse{Error: "missing code"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
