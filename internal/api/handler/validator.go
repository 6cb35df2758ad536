package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/rolegate/rolegate/internal/core/validation"
)

// echoValidator lets handlers call c.Validate; failures arrive as
// *domain.ValidationError.
type echoValidator struct {
	v *validation.Validator
}

func NewValidator() echo.Validator {
	return echoValidator{v: validation.New()}
}

func (ev echoValidator) Validate(i any) error { return ev.v.Struct(i) }
