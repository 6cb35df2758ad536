package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

// Authenticator verifies submitted credentials against the credential store.
type Authenticator struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewAuthenticator(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *Authenticator {
	return &Authenticator{store: store, hasher: hasher, log: log}
}

// Authenticate looks up email and checks password against the stored hash.
// A rejection is reported in the AuthResult; the error is non-nil only for
// store or hasher failures, always as a *domain.StoreError.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (domain.AuthResult, error) {
	identity, err := a.store.FindByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrIdentityNotFound) {
		return domain.Rejected(domain.ReasonNoSuchUser), nil
	}
	if err != nil {
		return domain.AuthResult{}, domain.NewStoreError("find identity by email", err)
	}

	err = a.hasher.Compare(ctx, identity.PasswordHash, password)
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		return domain.Rejected(domain.ReasonBadPassword), nil
	case err != nil:
		return domain.AuthResult{}, domain.NewStoreError("compare password", err)
	}

	return domain.Authenticated(identity), nil
}
