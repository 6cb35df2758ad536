package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles an Identity can hold.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleGuest Role = "guest"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleStaff, RoleGuest}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleGuest:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts s into a Role. An empty string yields RoleGuest.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return RoleGuest, nil
	}
	if !r.Valid() {
		return "", &ValidationError{Fields: map[string]string{"role": "role must be one of: admin staff guest"}}
	}
	return r, nil
}

// RoleOrGuest maps s to a Role, falling back to RoleGuest for anything
// outside the closed set. Used when decoding persisted records.
func RoleOrGuest(s string) Role {
	r, err := ParseRole(s)
	if err != nil {
		return RoleGuest
	}
	return r
}

// NormalizeEmail trims and lower-cases an email. Uniqueness and lookups are
// always performed on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is a registered principal.
type Identity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Registration carries the fields needed to create an Identity.
type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
	Role     Role
}
