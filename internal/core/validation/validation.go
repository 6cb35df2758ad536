// Package validation runs struct-tag validation and reports failures as a
// *domain.ValidationError keyed by the field's wire name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rolegate/rolegate/internal/core/domain"
)

// Validator is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	return &Validator{v: v}
}

// Struct validates s. Field failures come back as a *domain.ValidationError;
// anything else (a non-struct argument, say) is returned unchanged.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	fields := make(map[string]string, len(fes))
	for _, fe := range fes {
		fields[fe.Field()] = message(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

// wireName prefers the form tag, then the json tag, then the lower-cased
// Go field name.
func wireName(f reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			break
		}
		if name != "" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
