// Package pg implements the durable credential store on PostgreSQL.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"authgate.org/internal/auth"
	"authgate.org/internal/ids"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed auth.UserStore. Email uniqueness is enforced
// by the users_email_key constraint, so concurrent inserts with the same
// email cannot race: the database arbitrates and the loser gets ErrEmailTaken.
type Store struct {
	db *sql.DB
}

var _ auth.UserStore = (*Store)(nil)

// Open connects to PostgreSQL with tuned pool defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for migrations and readiness probes.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Create(ctx context.Context, name, email, passwordHash string) (*auth.User, error) {
	u := &auth.User{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	err := s.db.QueryRowContext(ctx, `
		insert into users(id, name, email, password_hash)
		values ($1,$2,$3,$4)
		returning created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, auth.ErrEmailTaken
		}
		return nil, storeErr("create user", err)
	}
	return u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return s.findOne(ctx, `
		select id, name, email, password_hash, created_at, updated_at
		from users where id = $1
	`, id)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, `
		select id, name, email, password_hash, created_at, updated_at
		from users where email = $1
	`, email)
}

func (s *Store) findOne(ctx context.Context, query, arg string) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return &u, nil
}

func (s *Store) Update(ctx context.Context, id string, params auth.UpdateParams) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, `
		update users
		set name       = coalesce($2, name),
		    email      = coalesce($3, email),
		    updated_at = now()
		where id = $1
		returning id, name, email, password_hash, created_at, updated_at
	`, id, params.Name, params.Email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, auth.ErrEmailTaken
		}
		return nil, storeErr("update user", err)
	}
	return &u, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `delete from users where id = $1`, id)
	if err != nil {
		return false, storeErr("delete user", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete user", err)
	}
	return affected > 0, nil
}

// Ping reports database reachability for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// storeErr classifies driver failures as ErrStoreUnavailable while letting
// caller-driven cancellation pass through untouched.
func storeErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", auth.ErrStoreUnavailable, op, err)
}
