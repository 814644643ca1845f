package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eetrade/marketplace/internal/core/ports"
)

// HealthHandler handles GET /api/health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ReadinessHandler handles GET /api/health/ready — readiness probe.
// Checks the selected key-value backend before declaring the service ready.
type ReadinessHandler struct {
	kv      ports.KeyValue
	backend string
}

func NewReadinessHandler(kv ports.KeyValue, backend string) *ReadinessHandler {
	return &ReadinessHandler{kv: kv, backend: backend}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	status := "ok"
	httpStatus := http.StatusOK

	if err := h.kv.Ping(ctx); err != nil {
		deps[h.backend] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		deps[h.backend] = dependencyStatus{Status: "ok"}
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
