package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
)

// IdentityHandler serves the self-service endpoints (/api/me) and the
// admin-only identity administration surface (/api/users).
type IdentityHandler struct {
	identityService ports.IdentityService
	authService     ports.AuthService
}

func NewIdentityHandler(identityService ports.IdentityService, authService ports.AuthService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService, authService: authService}
}

// Me returns the identity the authorization gate attached to the request.
//
// @Summary      Current identity
// @Tags         identity
// @Produce      json
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/me [get]
func (h *IdentityHandler) Me(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// ChangePassword verifies the caller's current password and replaces it.
//
// @Summary      Change own password
// @Tags         identity
// @Accept       json
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/me/password [put]
func (h *IdentityHandler) ChangePassword(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns all identities, sanitized.
//
// @Summary      List identities
// @Tags         identity
// @Produce      json
// @Success      200  {object}  listIdentitiesResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/users [get]
func (h *IdentityHandler) List(c echo.Context) error {
	identities, err := h.identityService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listIdentitiesResponse{Identities: identities})
}

// Get returns a single identity by id.
//
// @Summary      Get identity
// @Tags         identity
// @Produce      json
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.Identity
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/users/{id} [get]
func (h *IdentityHandler) Get(c echo.Context) error {
	identity, err := h.identityService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}

// Update applies a partial update to an identity: email, role, or active flag.
// Deactivation takes effect on the next gate check of any outstanding token.
//
// @Summary      Update identity
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Identity id"
// @Param        body  body      updateIdentityRequest  true  "Fields to change"
// @Success      200   {object}  domain.Identity
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/users/{id} [patch]
func (h *IdentityHandler) Update(c echo.Context) error {
	var req updateIdentityRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	update := ports.IdentityUpdate{
		Email:    req.Email,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		update.Role = &role
	}

	identity, err := h.identityService.Update(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
