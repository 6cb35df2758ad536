package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/api/sessioncookie"
	"github.com/rolegate/rolegate/internal/core/access"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

const (
	registerPage = "/register"

	msgInvalidForm = "invalid form submission"
)

type AuthHandler struct {
	login     ports.LoginService
	registrar ports.Registrar
	codec     *sessioncookie.Codec
	log       zerolog.Logger
}

func NewAuthHandler(login ports.LoginService, registrar ports.Registrar, codec *sessioncookie.Codec, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{login: login, registrar: registrar, codec: codec, log: log}
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// registerRequest has no role field: self-registered identities are always guests.
type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login verifies credentials, sets the session cookie and redirects to the
// role's landing area. Failures redirect back to the form with one generic
// message.
//
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      302  "redirect to /admin, /staff or /"
// @Failure      500  {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return h.backTo(c, access.LoginPage, domain.ErrInvalidCredentials.Error())
	}
	if err := c.Validate(&req); err != nil {
		return h.backTo(c, access.LoginPage, domain.ErrInvalidCredentials.Error())
	}

	// Any server-side session behind a presented cookie is replaced.
	prior := h.codec.Read(c)

	res, err := h.login.Login(c.Request().Context(), req.Email, req.Password, prior)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return h.backTo(c, access.LoginPage, domain.ErrInvalidCredentials.Error())
	}
	if err != nil {
		return err
	}

	if err := h.codec.Write(c, res.Session.ID, res.Session.ExpiresAt); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, res.Destination)
}

// Register creates a guest identity from the registration form.
//
// @Summary      Register
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        name      formData  string  true  "Display name"
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      302  "redirect to /login, or back to /register with a flash message"
// @Failure      500  {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return h.backTo(c, registerPage, msgInvalidForm)
	}

	_, err := h.registrar.Register(c.Request().Context(), domain.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.RoleGuest,
	})
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return h.backTo(c, registerPage, ve.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		return h.backTo(c, registerPage, domain.ErrDuplicateEmail.Error())
	case err != nil:
		return err
	}

	return c.Redirect(http.StatusFound, access.LoginPage)
}

// Logout destroys the session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  "redirect to /login"
// @Failure      500  {object}  map[string]string
// @Router       /logout [delete]
func (h *AuthHandler) Logout(c echo.Context) error {
	target, err := h.login.Logout(c.Request().Context(), h.codec.Read(c))
	if err != nil {
		return err
	}
	h.codec.Clear(c)
	return c.Redirect(http.StatusSeeOther, target)
}

func (h *AuthHandler) backTo(c echo.Context, page, msg string) error {
	sessioncookie.SetFlash(c, msg)
	return c.Redirect(http.StatusFound, page)
}
