package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

// AdminHandler exposes administrative identity management.
type AdminHandler struct {
	registrar ports.Registrar
}

func NewAdminHandler(registrar ports.Registrar) *AdminHandler {
	return &AdminHandler{registrar: registrar}
}

type createIdentityRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=admin staff guest"`
}

type identityResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateIdentity registers an identity with an explicit role.
//
// @Summary      Create identity
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createIdentityRequest  true  "Identity details"
// @Success      201   {object}  identityResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /admin/identities [post]
func (h *AdminHandler) CreateIdentity(c echo.Context) error {
	var req createIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	identity, err := h.registrar.Register(c.Request().Context(), domain.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, identityResponse{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Role:      identity.Role,
		CreatedAt: identity.CreatedAt,
	})
}
