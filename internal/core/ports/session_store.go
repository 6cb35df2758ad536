package ports

import (
	"context"
	"time"
)

// SessionStore is a key/value backend with expiry mapping session ids to
// identity ids.
type SessionStore interface {
	Save(ctx context.Context, sessionID, identityID string, ttl time.Duration) error
	// Lookup returns domain.ErrSessionNotFound for missing or expired sessions.
	Lookup(ctx context.Context, sessionID string) (string, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error
}
