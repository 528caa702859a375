package repo

import "context"

// CodeRepo holds the one-time verification codes. At most one live code per
// email: Put overwrites any previous entry and restarts its TTL.
type CodeRepo interface {
	Put(ctx context.Context, email, code string) error

	// Get returns ErrInvalidCode when no live code exists for the email.
	Get(ctx context.Context, email string) (string, error)

	// Consume atomically checks the stored code against the supplied one
	// and deletes it on match, so a code is accepted at most once even
	// under concurrent verification attempts. Mismatch or absence yields
	// ErrInvalidCode.
	Consume(ctx context.Context, email, code string) error

	// Delete is a no-op when no entry exists.
	Delete(ctx context.Context, email string) error
}
