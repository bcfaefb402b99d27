package users

import (
	"context"
	"errors"
	"testing"

	"recordstore/internal/auth"
	"recordstore/internal/store"
)

type stubStore struct {
	created []store.NewUser
	users   map[string]store.User
	err     error
}

func (s *stubStore) CreateUser(ctx context.Context, u store.NewUser) (store.User, error) {
	if s.err != nil {
		return store.User{}, s.err
	}
	s.created = append(s.created, u)
	role := store.RoleUser
	if len(s.created) == 1 {
		role = store.RoleAdmin
	}
	return store.User{ID: int64(len(s.created)), Email: u.Email, Username: u.Username, PasswordHash: u.PasswordHash, Role: role}, nil
}

func (s *stubStore) UserByUsername(ctx context.Context, username string) (store.User, error) {
	u, ok := s.users[username]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

type stubTokens struct{}

func (stubTokens) Issue(userID int64, role string) (string, error) {
	return "token-" + role, nil
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{name: "bad email", email: "nope", username: "alice", password: "password1"},
		{name: "short username", email: "a@b.c", username: "al", password: "password1"},
		{name: "username symbols", email: "a@b.c", username: "al-ice", password: "password1"},
		{name: "long username", email: "a@b.c", username: "abcdefghijklmnopqrstu", password: "password1"},
		{name: "short password", email: "a@b.c", username: "alice", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubStore{}
			svc := New(st, stubTokens{})
			_, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if len(st.created) != 0 {
				t.Fatalf("expected no user to be created")
			}
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	st := &stubStore{}
	svc := New(st, stubTokens{})

	user, err := svc.Register(context.Background(), "alice@example.com", "alice", "password1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != store.RoleAdmin {
		t.Fatalf("expected first user to be admin, got %s", user.Role)
	}
	if st.created[0].PasswordHash == "password1" {
		t.Fatalf("password stored in plaintext")
	}
	if err := auth.CheckPassword(st.created[0].PasswordHash, "password1"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := New(&stubStore{err: store.ErrUserExists}, stubTokens{})

	if _, err := svc.Register(context.Background(), "alice@example.com", "alice", "password1"); !errors.Is(err, store.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("password1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	st := &stubStore{users: map[string]store.User{
		"alice": {ID: 1, Username: "alice", PasswordHash: hash, Role: store.RoleAdmin},
	}}
	svc := New(st, stubTokens{})

	token, user, err := svc.Login(context.Background(), "alice", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "token-ADMIN" || user.ID != 1 {
		t.Fatalf("unexpected login result %q %#v", token, user)
	}

	if _, _, err := svc.Login(context.Background(), "alice", "wrong-pass"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost", "password1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(&stubStore{}, stubTokens{})
	if _, err := svc.Register(ctx, "alice@example.com", "alice", "password1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
