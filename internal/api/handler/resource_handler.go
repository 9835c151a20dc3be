package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ResourceHandler serves the protected demo resources behind the gate. The
// payloads are placeholders; the interesting part is the role requirement on
// each route.
type ResourceHandler struct{}

func NewResourceHandler() *ResourceHandler {
	return &ResourceHandler{}
}

// Reports is an admin-only resource.
//
// @Summary      Admin reports
// @Tags         resources
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/reports [get]
func (h *ResourceHandler) Reports(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"reports":      []string{},
		"requested_by": identity.Username,
	})
}

// Projects is available to every active identity.
//
// @Summary      Project listing
// @Tags         resources
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/projects [get]
func (h *ResourceHandler) Projects(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"projects":     []string{},
		"requested_by": identity.Username,
	})
}
