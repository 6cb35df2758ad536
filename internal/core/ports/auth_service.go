package ports

import (
	"context"

	"github.com/rolegate/rolegate/internal/core/domain"
)

// Registrar creates identities.
type Registrar interface {
	Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error)
}

// SessionResolver reconstructs the identity bound to a session reference.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*domain.Identity, error)
}

// LoginService runs the login and logout transactions.
type LoginService interface {
	// Login verifies credentials and establishes a new session, replacing
	// priorSessionID when set.
	Login(ctx context.Context, email, password, priorSessionID string) (*domain.LoginResult, error)
	// Logout destroys the session and returns the redirect target.
	Logout(ctx context.Context, sessionID string) (string, error)
}
