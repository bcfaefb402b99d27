package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Roles a user can hold.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// registrationLockID keys the advisory lock held while a user is inserted.
const registrationLockID int64 = 0x7265636f7264

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser holds the fields needed to register an account.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
}

// CreateUser inserts a user. The first account ever created is an admin.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	if u.Email == "" || u.Username == "" || u.PasswordHash == "" {
		return User{}, fmt.Errorf("email, username and password hash are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	// Registrations queue on this lock so only one can see an empty table.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockID); err != nil {
		return User{}, fmt.Errorf("lock registrations: %w", err)
	}

	user := User{Email: u.Email, Username: u.Username, PasswordHash: u.PasswordHash}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password_hash, role)
		SELECT $1, $2, $3, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'USER' ELSE 'ADMIN' END
		RETURNING id, role, created_at
	`, u.Email, u.Username, u.PasswordHash).Scan(&user.ID, &user.Role, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return user, nil
}

// UserByUsername looks up an account for login.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// CountUsers returns the number of registered accounts.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
