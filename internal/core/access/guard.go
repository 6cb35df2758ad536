// Package access holds the pure allow/deny decisions that gate routes, and
// the role-based landing resolution applied after login.
//
// Nothing here touches a request or a store: callers build a Subject from
// whatever their session layer resolved and act on the returned Decision.
package access

import "github.com/rolegate/rolegate/internal/core/domain"

// Decision is the result of a guard check.
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

func (d Decision) Allowed() bool { return d == Allow }

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Subject is the per-request authentication state.
type Subject struct {
	Authenticated bool
	Identity      *domain.Identity
}

// Anonymous is the Subject of a request without a valid session.
var Anonymous = Subject{}

// Authenticated returns the Subject for a resolved identity.
func Authenticated(id *domain.Identity) Subject {
	return Subject{Authenticated: id != nil, Identity: id}
}

// IsAuthenticated reports whether the subject has a resolved identity.
func (s Subject) IsAuthenticated() bool { return s.Authenticated && s.Identity != nil }

// Role returns the subject's role, or RoleGuest when unauthenticated.
func (s Subject) Role() domain.Role {
	if !s.IsAuthenticated() {
		return domain.RoleGuest
	}
	return s.Identity.Role
}

// Guard decides whether a subject may proceed.
type Guard func(Subject) Decision

// RequireAuthenticated denies anonymous subjects.
func RequireAuthenticated(s Subject) Decision {
	return Decision(s.IsAuthenticated())
}

// RequireNotAuthenticated denies subjects that already hold a session.
func RequireNotAuthenticated(s Subject) Decision {
	return Decision(!s.IsAuthenticated())
}

// RequireRole allows only authenticated subjects holding exactly role.
func RequireRole(s Subject, role domain.Role) Decision {
	return Decision(s.IsAuthenticated() && s.Identity.Role == role)
}

// RequireAnyRole allows authenticated subjects holding one of roles.
func RequireAnyRole(s Subject, roles ...domain.Role) Decision {
	if !s.IsAuthenticated() {
		return Deny
	}
	for _, r := range roles {
		if s.Identity.Role == r {
			return Allow
		}
	}
	return Deny
}

// Role returns a Guard bound to RequireRole.
func Role(role domain.Role) Guard {
	return func(s Subject) Decision { return RequireRole(s, role) }
}

// AnyRole returns a Guard bound to RequireAnyRole.
func AnyRole(roles ...domain.Role) Guard {
	set := append([]domain.Role(nil), roles...)
	return func(s Subject) Decision { return RequireAnyRole(s, set...) }
}
