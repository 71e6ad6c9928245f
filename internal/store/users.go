// Package store implements persistence for users and posts on top of
// sqlx. Queries are written with `?` placeholders and rebound for the
// active driver, so the same store runs on Postgres and sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulseboard/pulseboard/internal/models"
)

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Register validates the triple, hashes the password, and inserts the
// user. Username and email collisions are reported separately so the
// registration form can say which field clashed.
func (s *UserStore) Register(ctx context.Context, username, email, password string) (int64, error) {
	if username == "" || email == "" || password == "" {
		return 0, ErrMissingFields
	}

	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`), username)
	if err != nil {
		return 0, fmt.Errorf("store: check username: %w", err)
	}
	if exists {
		return 0, ErrDuplicateUsername
	}

	err = s.db.GetContext(ctx, &exists,
		s.db.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`), email)
	if err != nil {
		return 0, fmt.Errorf("store: check email: %w", err)
	}
	if exists {
		return 0, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("store: hash password: %w", err)
	}

	id, err := s.insert(ctx, username, email, string(hash), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert user: %w", err)
	}
	return id, nil
}

func (s *UserStore) insert(ctx context.Context, username, email, hash string, createdAt time.Time) (int64, error) {
	if s.db.DriverName() == "pgx" {
		var id int64
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
			INSERT INTO users (username, email, password_hash, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`), username, email, hash, createdAt).Scan(&id)
		return id, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, username, email, hash, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Authenticate verifies a username/password pair. An unknown username
// and a wrong password return the same error so callers cannot probe
// which usernames exist.
func (s *UserStore) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = ?
	`), username)

	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("store: load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = ?
	`), username)

	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("store: load user: %w", err)
	}
	return u, nil
}
