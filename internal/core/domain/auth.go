package domain

import "time"

// RejectReason explains why a credential check failed. It is kept for logs
// and metrics only; users always see the same generic message.
type RejectReason string

const (
	ReasonNoSuchUser  RejectReason = "no-such-user"
	ReasonBadPassword RejectReason = "bad-password"
)

// AuthResult is the outcome of a credential check: either an authenticated
// identity or a rejection reason, never both.
type AuthResult struct {
	Identity *Identity
	Reason   RejectReason
}

// Authenticated builds a successful result.
func Authenticated(id *Identity) AuthResult { return AuthResult{Identity: id} }

// Rejected builds a failed result.
func Rejected(reason RejectReason) AuthResult { return AuthResult{Reason: reason} }

// OK reports whether the result carries an identity.
func (r AuthResult) OK() bool { return r.Identity != nil }

// Err returns nil on success and a *RejectedError otherwise.
func (r AuthResult) Err() error {
	if r.OK() {
		return nil
	}
	return &RejectedError{Reason: r.Reason}
}

// Session binds an opaque reference to an identity id.
type Session struct {
	ID         string
	IdentityID string
	ExpiresAt  time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session     *Session
	Identity    *Identity
	Destination string
}
