package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge-api/internal/api/metrics"
	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
	"github.com/taskforge/taskforge-api/internal/pkg/token"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxIdentity   = "identity"
	CtxIdentityID = "identity_id"
	CtxRole       = "role"
)

// Auth is the authorization gate every protected request passes through. It
// extracts the bearer token, verifies it, and loads the identity so a
// deactivated or deleted account is rejected immediately even though tokens
// themselves cannot be revoked. The client only ever learns "authentication
// required"; the specific failure is logged and counted, never returned.
func Auth(verifier ports.TokenVerifier, identities ports.IdentityRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.GateDenialsTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.GateDenialsTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrUnauthenticated
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
				metrics.GateDenialsTotal.WithLabelValues("invalid_token").Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
				return domain.ErrUnauthenticated
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			identity, err := identities.FindByID(c.Request().Context(), claims.IdentityID)
			if err != nil {
				if domain.KindOf(err) != domain.KindNotFound {
					// Storage fault, not an auth decision.
					return err
				}
				metrics.GateDenialsTotal.WithLabelValues("identity_unavailable").Inc()
				log.Debug().Str("identity_id", claims.IdentityID).Msg("valid token for absent identity")
				return domain.ErrUnauthenticated
			}
			if !identity.IsActive {
				metrics.GateDenialsTotal.WithLabelValues("identity_unavailable").Inc()
				log.Debug().Str("identity_id", claims.IdentityID).Msg("valid token for deactivated identity")
				return domain.ErrUnauthenticated
			}

			c.Set(CtxIdentity, identity)
			c.Set(CtxIdentityID, identity.ID)
			c.Set(CtxRole, identity.Role)

			return next(c)
		}
	}
}

func verifyResult(err error) string {
	switch {
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	default:
		return "malformed"
	}
}
