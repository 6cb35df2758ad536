package ports

import (
	"context"

	"github.com/rolegate/rolegate/internal/core/domain"
)

// CredentialStore persists identity records.
// Lookups return domain.ErrIdentityNotFound when no record matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	// Create inserts a new identity and returns it with its assigned ID.
	// It must fail with domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
