package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rolegate/rolegate/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	mu        sync.Mutex
	byID      map[string]*domain.Identity
	nextID    int
	findErr   error
	createErr error
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{byID: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (s *stubCredentialStore) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	for _, existing := range s.byID {
		if existing.Email == identity.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	s.nextID++
	created := cloneIdentity(identity)
	created.ID = "id-" + strconv.Itoa(s.nextID)
	s.byID[created.ID] = cloneIdentity(created)
	return created, nil
}

func (s *stubCredentialStore) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, i := range s.byID {
		if i.Email == email {
			return cloneIdentity(i), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (s *stubCredentialStore) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(i), nil
}

func (s *stubCredentialStore) countEmail(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, i := range s.byID {
		if i.Email == email {
			n++
		}
	}
	return n
}

func (s *stubCredentialStore) setRole(id string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id].Role = role
}

func (s *stubCredentialStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

type stubSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]string
	ttls      map[string]time.Duration
	lookupErr error
	saveErr   error
	deleteErr error
	deleted   []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *stubSessionStore) Save(_ context.Context, sessionID, identityID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sessionID] = identityID
	s.ttls[sessionID] = ttl
	return nil
}

func (s *stubSessionStore) Lookup(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	id, ok := s.sessions[sessionID]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return id, nil
}

func (s *stubSessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.sessions, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

// stubHasher stores "hashed:" + plaintext. It keeps tests fast; bcrypt itself
// is covered by the hashing package and the end-to-end scenario test.
type stubHasher struct {
	hashErr    error
	compareErr error
}

func (h *stubHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Compare(_ context.Context, hash, plaintext string) error {
	if h.compareErr != nil {
		return h.compareErr
	}
	if strings.TrimPrefix(hash, "hashed:") != plaintext {
		return domain.ErrPasswordMismatch
	}
	return nil
}

var errBoom = errors.New("boom")
