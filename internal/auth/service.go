package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

// Service orchestrates registration, login, logout, and profile lookups over
// the two stores. It holds no per-request state of its own; every call may run
// concurrently with any other, and correctness under concurrency rests on the
// stores (uniqueness-enforced insert, atomic keyed operations).
//
// Emails are normalized to lower case on every entry point; the store only
// ever sees the normalized form, so lookups and the uniqueness constraint are
// effectively case-insensitive.
type Service struct {
	users    UserStore
	sessions SessionStore

	tokenSecret []byte
	tokenTTL    time.Duration
	bcryptCost  int
	now         func() time.Time
	newSession  func() string
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithTokenSecret sets the process-wide HS256 signing secret. Required.
func WithTokenSecret(secret string) ServiceOption {
	return func(s *Service) error {
		if strings.TrimSpace(secret) == "" {
			return errors.New("auth: token secret is empty")
		}
		s.tokenSecret = []byte(secret)
		return nil
	}
}

// WithTokenTTL sets the bearer token validity window. Sessions share the
// same window so a session never outlives its paired token.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
		return nil
	}
}

// WithBcryptCost tunes the password hashing work factor.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) error {
		if cost > 0 {
			s.bcryptCost = cost
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithSessionIDFunc overrides session id generation (useful for tests).
func WithSessionIDFunc(fn func() string) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.newSession = fn
		}
		return nil
	}
}

// NewService constructs the authentication engine.
func NewService(users UserStore, sessions SessionStore, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if sessions == nil {
		return nil, errors.New("auth: session store is required")
	}
	svc := &Service{
		users:      users,
		sessions:   sessions,
		tokenTTL:   defaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		newSession: uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	if len(svc.tokenSecret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	return svc, nil
}

// TokenTTL reports the shared validity window for tokens and sessions.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a new user from a plaintext password. The advisory lookup
// gives a clean early rejection; the store's uniqueness constraint is the
// actual race-free guarantee, so a concurrent duplicate still surfaces as
// ErrEmailTaken from Create.
func (s *Service) Register(ctx context.Context, name, email, password string) (PublicUser, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return PublicUser{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return PublicUser{}, err
	}
	if password == "" {
		return PublicUser{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return PublicUser{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return PublicUser{}, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, hash)
	if err != nil {
		return PublicUser{}, err
	}
	return user.Public(), nil
}

// Login verifies credentials, issues a bearer token, and opens a fresh
// session whose TTL matches the token validity window. An unknown email and
// a wrong password both collapse to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	token, err := signToken(s.tokenSecret, user.ID, user.Email, now, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	session := &Session{
		ID:        s.newSession(),
		UserID:    user.ID,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session, s.tokenTTL); err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:     token,
		SessionID: session.ID,
		User:      user.Public(),
	}, nil
}

// Logout deletes the session unconditionally. A missing or already-expired
// session is not an error; logout is not an assertion that a session existed.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}
	_, err := s.sessions.Delete(ctx, sessionID)
	return err
}

// Session resolves a session id to its record. This is a server-side check
// independent from bearer token verification; the two are bound only by
// sharing the same expiry window.
func (s *Service) Session(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	return s.sessions.Find(ctx, sessionID)
}

// UserByID fetches and redacts a user, or returns ErrUserNotFound.
func (s *Service) UserByID(ctx context.Context, userID string) (PublicUser, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PublicUser{}, ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return PublicUser{}, err
	}
	return user.Public(), nil
}

// UpdateProfile mutates name and/or email of an existing user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, params UpdateParams) (PublicUser, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PublicUser{}, ErrUserNotFound
	}
	if params.Name == nil && params.Email == nil {
		return PublicUser{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return PublicUser{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		params.Name = &name
	}
	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if err := validateEmail(email); err != nil {
			return PublicUser{}, err
		}
		params.Email = &email
	}
	user, err := s.users.Update(ctx, userID, params)
	if err != nil {
		return PublicUser{}, err
	}
	return user.Public(), nil
}

// DeleteUser removes the user record. The bool reports whether it existed.
func (s *Service) DeleteUser(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	return s.users.Delete(ctx, userID)
}

// VerifyToken checks a bearer token's signature and expiry without touching
// either store.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return parseToken(s.tokenSecret, token, s.now().UTC())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return nil
}
