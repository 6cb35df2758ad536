package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rolegate/rolegate/internal/core/access"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/metrics"
)

// Guard runs decide against the request subject. On deny it redirects to
// whatever target returns, without calling next.
func Guard(name string, decide access.Guard, target func(access.Subject) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SubjectFrom(c)
			if decide(s).Allowed() {
				return next(c)
			}
			metrics.GuardDenialsTotal.WithLabelValues(name).Inc()
			return c.Redirect(http.StatusFound, target(s))
		}
	}
}

func toLogin(access.Subject) string { return access.LoginPage }

func toLanding(s access.Subject) string { return access.Landing(s.Role()) }

// RequireAuthenticated redirects anonymous requests to the login page.
func RequireAuthenticated() echo.MiddlewareFunc {
	return Guard("authenticated", access.RequireAuthenticated, toLogin)
}

// RequireNotAuthenticated sends already logged-in subjects to their landing
// area. It guards the login and registration entry points.
func RequireNotAuthenticated() echo.MiddlewareFunc {
	return Guard("not_authenticated", access.RequireNotAuthenticated, toLanding)
}

// RequireRole lets through only subjects holding role.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return Guard("role:"+role.String(), access.Role(role), toLogin)
}

// RequireAnyRole lets through subjects holding any of roles.
func RequireAnyRole(roles ...domain.Role) echo.MiddlewareFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return Guard("roles:"+strings.Join(names, ","), access.AnyRole(roles...), toLogin)
}
