package auth

import "errors"

var (
	// ErrEmailTaken is returned when a registration targets an email that
	// already belongs to a live user record.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUserNotFound is returned by lookups for an absent user id.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrSessionNotFound is returned when a session id does not resolve,
	// whether it never existed or its TTL elapsed.
	ErrSessionNotFound = errors.New("auth: session not found")

	// ErrStoreUnavailable wraps connectivity failures from either store.
	// The engine never retries; the failure propagates to the boundary.
	ErrStoreUnavailable = errors.New("auth: store unavailable")

	// ErrInvalidInput flags malformed input that reached the engine.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrInvalidToken indicates the bearer token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)
