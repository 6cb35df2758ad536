package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
	"github.com/rolegate/rolegate/internal/core/validation"
)

// Registrar creates new identities with freshly hashed passwords.
type Registrar struct {
	store    ports.CredentialStore
	hasher   ports.PasswordHasher
	validate *validation.Validator
	log      zerolog.Logger
	now      func() time.Time
}

func NewRegistrar(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *Registrar {
	return &Registrar{
		store:    store,
		hasher:   hasher,
		validate: validation.New(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register validates reg, hashes the password and stores the identity.
// An empty role becomes guest. Nothing is written when validation fails.
func (r *Registrar) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = domain.NormalizeEmail(reg.Email)

	if err := r.validate.Struct(reg); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(string(reg.Role))
	if err != nil {
		return nil, err
	}

	hash, err := r.hasher.Hash(ctx, reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := r.store.Create(ctx, &domain.Identity{
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    r.now(),
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewStoreError("create identity", err)
	}

	r.log.Info().Str("identity_id", created.ID).Str("role", role.String()).Msg("identity registered")
	return created, nil
}
