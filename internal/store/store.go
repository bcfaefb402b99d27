package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserExists signals the email or username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateRequest signals the user already requested this catalog item.
	ErrDuplicateRequest = errors.New("request already exists")
	// ErrRequestNotFound signals a missing request record.
	ErrRequestNotFound = errors.New("request not found")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
