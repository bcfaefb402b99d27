package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a missing, malformed, expired or forged token.
var ErrInvalidToken = errors.New("invalid session token")

// Session identifies the caller of a request.
type Session struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == "ADMIN"
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager signing with secret.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user.
func (m *Manager) Issue(userID int64, role string) (string, error) {
	now := m.now()
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse verifies a token and returns its session.
func (m *Manager) Parse(token string) (Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 || c.Role == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: userID, Role: c.Role}, nil
}
