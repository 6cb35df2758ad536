package service

import (
	"context"
	"errors"

	"github.com/rolegate/rolegate/internal/core/domain"
)

// EnsureAdmin registers an admin identity unless one with the same email
// already exists. It reports whether a new identity was created. An existing
// identity is left untouched, whatever its role.
func EnsureAdmin(ctx context.Context, r *Registrar, name, email, password string) (bool, error) {
	_, err := r.Register(ctx, domain.Registration{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrDuplicateEmail):
		return false, nil
	default:
		return false, err
	}
}
