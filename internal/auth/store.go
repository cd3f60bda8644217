package auth

import (
	"context"
	"time"
)

// UserStore describes the durable credential store. The store itself is the
// sole arbiter of email uniqueness: Create must be an atomic conditional
// insert backed by a uniqueness constraint, never a check-then-insert.
type UserStore interface {
	// Create persists a new user and assigns its id and timestamps.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)

	// FindByID returns the user or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the user or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update mutates the given fields, refreshes the update timestamp and
	// returns the new record, or ErrUserNotFound.
	Update(ctx context.Context, id string, params UpdateParams) (*User, error)

	// Delete removes the record. The bool reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Ping reports store reachability.
	Ping(ctx context.Context) error
}

// SessionStore describes the ephemeral keyed session store. Expiry is
// enforced by the store (native key TTL), not by callers.
type SessionStore interface {
	// Create writes the session with the given time-to-live attached.
	Create(ctx context.Context, s *Session, ttl time.Duration) error

	// Find returns the session or ErrSessionNotFound. An expired session
	// is indistinguishable from one that never existed.
	Find(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes the session. Idempotent: deleting a missing or
	// already-expired session is not an error; the bool reports whether
	// the key existed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// Ping reports store reachability.
	Ping(ctx context.Context) error
}
