package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/pkg/logger"
)

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	db      Pinger
	service string
}

// NewHealthHandler returns a HealthHandler probing db.
func NewHealthHandler(db Pinger, service string) *HealthHandler {
	return &HealthHandler{db: db, service: service}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.FromEcho(c).Warn("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"success":  false,
			"status":   "DOWN",
			"service":  h.service,
			"database": "Disconnected",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"status":   "UP",
		"service":  h.service,
		"database": "Connected",
	})
}
