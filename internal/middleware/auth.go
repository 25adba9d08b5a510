package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workspace-service/internal/apperror"
	"workspace-service/internal/authz"
	"workspace-service/pkg/jwtutil"
	"workspace-service/pkg/logger"
	"workspace-service/prometheus"
)

const scopeKey = "scope"

const msgInvalidToken = "Invalid or expired token"

// TokenValidator checks a bearer token.
type TokenValidator interface {
	Validate(token string) (*jwtutil.UserClaims, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller's scope in the context.
func JWTAuthMiddleware(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return unauthorized(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return unauthorized(c, "Invalid authorization header format")
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token")
				prometheus.RecordAuthError("invalid_token")
				return unauthorized(c, msgInvalidToken)
			}

			scope, err := authz.FromClaims(claims)
			if err != nil {
				prometheus.RecordAuthError("invalid_claims")
				return unauthorized(c, msgInvalidToken)
			}
			c.Set(scopeKey, scope)

			ctxLogger := log.With(
				zap.String("tenant_id", scope.TenantID().String()),
				zap.String("user_id", scope.UserID().String()))
			logger.SetEcho(c, ctxLogger)

			return next(c)
		}
	}
}

// RequireAction rejects callers whose role may not perform action. It must
// run after JWTAuthMiddleware.
func RequireAction(action authz.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, _ := ScopeFrom(c)
			if err := authz.Authorize(scope, action); err != nil {
				logger.FromEcho(c).Info("Action denied",
					zap.String("action", string(action)),
					zap.String("role", string(scope.Role())))
				return c.JSON(apperror.HTTPStatus(apperror.KindOf(err)), echo.Map{
					"success": false,
					"message": apperror.Message(err),
				})
			}
			return next(c)
		}
	}
}

// ScopeFrom returns the scope stored by JWTAuthMiddleware.
func ScopeFrom(c echo.Context) (authz.Scope, bool) {
	scope, ok := c.Get(scopeKey).(authz.Scope)
	return scope, ok
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
}
