package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/api/sessioncookie"
	"github.com/rolegate/rolegate/internal/core/access"
	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
	"github.com/rolegate/rolegate/internal/metrics"
)

const (
	subjectKey   = "subject"
	sessionIDKey = "session_id"
)

// Session resolves the session cookie into an access.Subject and stores it
// on the echo context. Missing, forged or stale cookies leave the request
// anonymous and are cleared. Store failures abort the request.
func Session(resolver ports.SessionResolver, codec *sessioncookie.Codec, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(subjectKey, access.Anonymous)

			if !codec.Present(c) {
				metrics.SessionResolutionsTotal.WithLabelValues("absent").Inc()
				return next(c)
			}

			sessionID := codec.Read(c)
			identity, err := resolver.Resolve(c.Request().Context(), sessionID)
			switch {
			case errors.Is(err, domain.ErrSessionInvalid):
				metrics.SessionResolutionsTotal.WithLabelValues("invalid").Inc()
				codec.Clear(c)
				return next(c)
			case err != nil:
				metrics.SessionResolutionsTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("path", c.Path()).Msg("resolve session")
				return err
			}

			metrics.SessionResolutionsTotal.WithLabelValues("resolved").Inc()
			c.Set(sessionIDKey, sessionID)
			c.Set(subjectKey, access.Authenticated(identity))
			return next(c)
		}
	}
}

// SubjectFrom returns the subject stored by Session, or access.Anonymous.
func SubjectFrom(c echo.Context) access.Subject {
	s, _ := c.Get(subjectKey).(access.Subject)
	return s
}

// SessionIDFrom returns the resolved session id, or "".
func SessionIDFrom(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

// WithSubject stores s on c. Used by tests and by handlers that build a
// request context by hand.
func WithSubject(c echo.Context, s access.Subject, sessionID string) {
	c.Set(subjectKey, s)
	if sessionID != "" {
		c.Set(sessionIDKey, sessionID)
	}
}
