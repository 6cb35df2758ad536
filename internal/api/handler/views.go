package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rolegate/rolegate/internal/api/middleware"
	"github.com/rolegate/rolegate/internal/api/sessioncookie"
)

// viewResponse stands in for a rendered template: a view name and its data.
type viewResponse struct {
	View string         `json:"view"`
	Data map[string]any `json:"data,omitempty"`
}

func render(c echo.Context, view string, data map[string]any) error {
	return c.JSON(http.StatusOK, viewResponse{View: view, Data: data})
}

// PageHandler serves the pages behind the access guards.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// Index renders the default authenticated area.
//
// @Summary      Home page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      302  "redirect to /login when not authenticated"
// @Router       / [get]
func (h *PageHandler) Index(c echo.Context) error {
	return h.area(c, "index")
}

// Admin renders the admin area.
//
// @Summary      Admin area
// @Tags         pages
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      302  "redirect to /login unless role is admin"
// @Router       /admin [get]
func (h *PageHandler) Admin(c echo.Context) error {
	return h.area(c, "admin")
}

// Staff renders the staff area.
//
// @Summary      Staff area
// @Tags         pages
// @Produce      json
// @Success      200  {object}  viewResponse
// @Failure      302  "redirect to /login unless role is admin or staff"
// @Router       /staff [get]
func (h *PageHandler) Staff(c echo.Context) error {
	return h.area(c, "staff")
}

func (h *PageHandler) area(c echo.Context, view string) error {
	s := middleware.SubjectFrom(c)
	if !s.IsAuthenticated() {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return render(c, view, map[string]any{
		"name": s.Identity.Name,
		"role": s.Identity.Role,
	})
}

// LoginPage renders the login form with any pending flash message.
//
// @Summary      Login page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /login [get]
func (h *PageHandler) LoginPage(c echo.Context) error {
	return render(c, "login", flashData(c))
}

// RegisterPage renders the registration form.
//
// @Summary      Registration page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  viewResponse
// @Router       /register [get]
func (h *PageHandler) RegisterPage(c echo.Context) error {
	return render(c, "register", flashData(c))
}

func flashData(c echo.Context) map[string]any {
	if msg := sessioncookie.TakeFlash(c); msg != "" {
		return map[string]any{"message": msg}
	}
	return nil
}
