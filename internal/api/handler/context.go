package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskforge/taskforge-api/internal/api/middleware"
	"github.com/taskforge/taskforge-api/internal/core/domain"
)

// currentIdentity extracts the identity the authorization gate attached to the
// request context. Its presence proves the gate ran; handlers behind the gate
// treat absence as a wiring bug and fail closed.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity, ok := c.Get(middleware.CtxIdentity).(*domain.Identity)
	if !ok || identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}
