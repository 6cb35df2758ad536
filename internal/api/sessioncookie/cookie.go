// Package sessioncookie carries the session reference to and from the
// client. The cookie value is an HS256-signed token holding only the session
// id and its expiry; the binding to an identity stays server-side.
package sessioncookie

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const flashCookie = "rolegate_flash"

var ErrInvalidCookie = errors.New("invalid session cookie")

// Codec signs, reads, and clears the session cookie.
type Codec struct {
	name   string
	secret []byte
	secure bool
	now    func() time.Time
}

func NewCodec(name, secret string, secure bool) *Codec {
	return &Codec{name: name, secret: []byte(secret), secure: secure, now: time.Now}
}

// Name returns the cookie name.
func (c *Codec) Name() string { return c.name }

// Encode signs sessionID with an expiry.
func (c *Codec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(c.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies value and returns the session id it carries.
func (c *Codec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

// Read returns the session id from the request cookie, or "" when the
// cookie is missing or fails verification.
func (c *Codec) Read(ctx echo.Context) string {
	ck, err := ctx.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return ""
	}
	id, err := c.Decode(ck.Value)
	if err != nil {
		return ""
	}
	return id
}

// Present reports whether the request carries a session cookie at all.
func (c *Codec) Present(ctx echo.Context) bool {
	ck, err := ctx.Cookie(c.name)
	return err == nil && ck.Value != ""
}

// Write sets the signed session cookie.
func (c *Codec) Write(ctx echo.Context, sessionID string, expiresAt time.Time) error {
	value, err := c.Encode(sessionID, expiresAt)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie on the client.
func (c *Codec) Clear(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetFlash stores a one-shot message shown on the next page render.
func SetFlash(ctx echo.Context, msg string) {
	ctx.SetCookie(flash(encodeFlash(msg), 60))
}

// TakeFlash returns and clears the pending flash message.
func TakeFlash(ctx echo.Context) string {
	ck, err := ctx.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return ""
	}
	ctx.SetCookie(flash("", -1))
	return decodeFlash(ck.Value)
}

func flash(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
