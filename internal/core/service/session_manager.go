package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

const defaultSessionTTL = 24 * time.Hour

// SessionManager binds session references to identities and resolves them
// back on later requests.
type SessionManager struct {
	sessions ports.SessionStore
	store    ports.CredentialStore
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewSessionManager(sessions ports.SessionStore, store ports.CredentialStore, ttl time.Duration, log zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		sessions: sessions,
		store:    store,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		newID:    newSessionID,
	}
}

// TTL is how long an established session stays valid.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Establish creates a fresh session for identity. The prior session, if any,
// is destroyed first so a reference never survives a new login.
func (m *SessionManager) Establish(ctx context.Context, prior string, identity *domain.Identity) (*domain.Session, error) {
	if err := m.Destroy(ctx, prior); err != nil {
		return nil, err
	}

	s := &domain.Session{
		ID:         m.newID(),
		IdentityID: identity.ID,
		ExpiresAt:  m.now().Add(m.ttl),
	}
	if err := m.sessions.Save(ctx, s.ID, s.IdentityID, m.ttl); err != nil {
		return nil, domain.NewStoreError("save session", err)
	}
	return s, nil
}

// Resolve returns the current identity bound to sessionID. Missing, expired
// or orphaned sessions yield domain.ErrSessionInvalid; store failures yield
// a *domain.StoreError.
func (m *SessionManager) Resolve(ctx context.Context, sessionID string) (*domain.Identity, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionInvalid
	}

	identityID, err := m.sessions.Lookup(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, domain.NewStoreError("lookup session", err)
	}

	identity, err := m.store.FindByID(ctx, identityID)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		m.log.Info().Str("identity_id", identityID).Msg("session bound to missing identity, discarding")
		if derr := m.sessions.Delete(ctx, sessionID); derr != nil {
			m.log.Warn().Err(derr).Msg("discard orphaned session")
		}
		return nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, domain.NewStoreError("find identity by id", err)
	}
	return identity, nil
}

// Destroy invalidates sessionID. Destroying an absent session is a no-op.
func (m *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, sessionID); err != nil {
		return domain.NewStoreError("delete session", err)
	}
	return nil
}

// newSessionID returns 244 random bits from two v4 UUIDs.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
