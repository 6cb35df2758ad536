package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusRule maps errors matching a sentinel or type to a status. msg
// returns the text shown to the client and reports whether err matched.
type statusRule struct {
	code int
	msg  func(error) (string, bool)
}

var statusRules = []statusRule{
	{http.StatusBadRequest, validationMessage},
	{http.StatusConflict, fixed(domain.ErrDuplicateEmail, domain.ErrDuplicateEmail.Error())},
	{http.StatusUnauthorized, fixed(domain.ErrInvalidCredentials, domain.ErrInvalidCredentials.Error())},
	{http.StatusUnauthorized, fixed(domain.ErrSessionInvalid, "not authenticated")},
}

func fixed(target error, msg string) func(error) (string, bool) {
	return func(err error) (string, bool) { return msg, errors.Is(err, target) }
}

func validationMessage(err error) (string, bool) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return "", false
	}
	return ve.Error(), true
}

// NewHTTPErrorHandler renders every error as {"error": msg}. Store failures
// and unrecognised errors are logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := classify(err)
		if code == http.StatusInternalServerError {
			logUnhandled(log, err, c)
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	for _, r := range statusRules {
		if msg, ok := r.msg(err); ok {
			return r.code, msg
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

func logUnhandled(log zerolog.Logger, err error, c echo.Context) {
	event := log.Error().Err(err)
	var se *domain.StoreError
	if errors.As(err, &se) {
		event = event.Str("store_op", se.Op)
	}
	event.Str("method", c.Request().Method).Str("path", c.Path()).Msg("unhandled error")
}
