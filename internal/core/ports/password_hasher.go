package ports

import "context"

// PasswordHasher produces and verifies salted one-way password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Compare returns domain.ErrPasswordMismatch when plaintext does not match hash.
	Compare(ctx context.Context, hash, plaintext string) error
}
