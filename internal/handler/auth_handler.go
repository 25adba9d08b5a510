package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/internal/apperror"
	"workspace-service/internal/ratelimit"
	"workspace-service/internal/service"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

const msgTooManyAttempts = "Too many attempts, please try again later"

var errThrottled = apperror.New(apperror.RateLimited, msgTooManyAttempts)

// TenantRegistry is the subset of the tenant service used over HTTP.
type TenantRegistry interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
}

// AuthHandler serves the public registration and login routes.
type AuthHandler struct {
	tenants TenantRegistry
	limiter ratelimit.Limiter
}

// NewAuthHandler returns an AuthHandler. A nil limiter disables throttling.
func NewAuthHandler(tenants TenantRegistry, limiter ratelimit.Limiter) *AuthHandler {
	return &AuthHandler{tenants: tenants, limiter: limiter}
}

// RegisterTenant handles POST /auth/register-tenant
func (h *AuthHandler) RegisterTenant(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if !h.allow(c, ratelimit.RegisterKey(c.RealIP())) {
		prometheus.RecordRegister("throttled")
		return fail(c, errThrottled)
	}

	res, err := h.tenants.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusCreated, res)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	key := ratelimit.LoginKey(
		strings.ToLower(strings.TrimSpace(req.TenantSubdomain)),
		strings.ToLower(strings.TrimSpace(req.Email)))
	if !h.allow(c, key) {
		prometheus.RecordLogin("throttled")
		return fail(c, errThrottled)
	}

	res, err := h.tenants.Login(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return success(c, http.StatusOK, res)
}

// allow reports whether the attempt may proceed. An unreachable limiter
// store lets the attempt through.
func (h *AuthHandler) allow(c echo.Context, key string) bool {
	if h.limiter == nil {
		return true
	}
	err := h.limiter.Allow(c.Request().Context(), key)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ratelimit.ErrLimited):
		logger.FromEcho(c).Info("Attempt throttled", zap.String("path", c.Path()))
		return false
	default:
		logger.FromEcho(c).Warn("Rate limiter unavailable", zap.Error(err))
		return true
	}
}
