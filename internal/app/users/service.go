package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"recordstore/internal/auth"
	"recordstore/internal/store"
)

// ErrInvalidInput wraps registration validation failures.
var ErrInvalidInput = errors.New("invalid input")

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, u store.NewUser) (store.User, error)
	UserByUsername(ctx context.Context, username string) (store.User, error)
}

// Tokens issues session tokens.
type Tokens interface {
	Issue(userID int64, role string) (string, error)
}

// Service exposes registration and login.
type Service interface {
	Register(ctx context.Context, email, username, password string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, store.User, error)
}

type service struct {
	store  Store
	tokens Tokens
}

// New wires a Service backed by the provided Store.
func New(store Store, tokens Tokens) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Register(ctx context.Context, email, username, password string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}

	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := validateRegistration(email, username, password); err != nil {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.User{}, err
	}

	user, err := s.store.CreateUser(ctx, store.NewUser{Email: email, Username: username, PasswordHash: hash})
	if err != nil {
		return store.User{}, err
	}

	log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, store.User, error) {
	if err := ctx.Err(); err != nil {
		return "", store.User{}, err
	}

	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.BurnPasswordCheck(password)
			return "", store.User{}, auth.ErrInvalidCredentials
		}
		return "", store.User{}, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return "", store.User{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", store.User{}, fmt.Errorf("issue session: %w", err)
	}
	return token, user, nil
}

func validateRegistration(email, username, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-20 characters of letters, numbers and underscores", ErrInvalidInput)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}
