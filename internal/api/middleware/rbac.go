package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/taskforge/taskforge-api/internal/api/metrics"
	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// RequireRole enforces a minimum role for a route. It must run after Auth,
// which puts the identity's current role in the context. The role ordering
// lives in domain.Role.AtLeast, so an admin passes every employee gate.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(domain.Role)
			if !ok {
				// Auth never ran; treat as unauthenticated, not forbidden.
				metrics.GateDenialsTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrUnauthenticated
			}
			if !role.AtLeast(required) {
				metrics.GateDenialsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
