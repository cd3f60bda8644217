package auth

import "time"

// User is the durable identity record held by the credential store.
// PasswordHash never leaves the auth package; callers only ever see
// the PublicUser projection.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the password-redacted projection returned on every path
// that hands a user back to a caller.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public strips the password hash from a user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Session is a server-tracked authorization record keyed by an opaque
// identifier. The session store's key TTL is the only source of truth for
// expiry; the record deliberately carries no expiry field of its own.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult bundles the bearer token, the session identifier, and the
// public user projection returned by a successful login.
type LoginResult struct {
	Token     string
	SessionID string
	User      PublicUser
}

// UpdateParams carries the mutable profile fields. Nil means "leave as is".
type UpdateParams struct {
	Name  *string
	Email *string
}
