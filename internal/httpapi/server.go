package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recordstore/internal/acquisition"
	"recordstore/internal/app/catalog"
	"recordstore/internal/app/requests"
	"recordstore/internal/app/settings"
	"recordstore/internal/auth"
	"recordstore/internal/http/middleware"
	"recordstore/internal/logging"
	"recordstore/internal/store"
)

// UserService captures registration and login.
type UserService interface {
	Register(ctx context.Context, email, username, password string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, store.User, error)
}

// CatalogService describes catalog browsing.
type CatalogService interface {
	SearchArtists(ctx context.Context, query string, limit, offset int) (*catalog.ArtistResults, error)
	SearchAlbums(ctx context.Context, query string, limit, offset int) (*catalog.AlbumResults, error)
	ArtistDetail(ctx context.Context, artistID string) (*catalog.ArtistDetail, error)
}

// RequestService coordinates acquisition requests.
type RequestService interface {
	Create(ctx context.Context, session auth.Session, nr requests.NewRequest) (store.Request, error)
	ListByUser(ctx context.Context, session auth.Session, status string) ([]store.Request, error)
	ListAll(ctx context.Context, status string) ([]store.Request, error)
	UpdateStatus(ctx context.Context, id, status string, note *string) (store.Request, error)
	Delete(ctx context.Context, id string) error
	Reconcile(ctx context.Context) (acquisition.SweepResult, error)
}

// SettingsService manages the Lidarr integration settings.
type SettingsService interface {
	Get(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, u settings.Update) error
	Test(ctx context.Context) (settings.TestResult, error)
}

// SessionParser verifies bearer tokens.
type SessionParser interface {
	Parse(token string) (auth.Session, error)
}

// Auth routes allow this many attempts per client per window.
const (
	authBurst  = 10
	authWindow = time.Minute
)

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users    UserService
	catalog  CatalogService
	requests RequestService
	settings SettingsService
	sessions SessionParser
}

// New configures a Server.
func New(
	users UserService,
	catalog CatalogService,
	requests RequestService,
	settings SettingsService,
	sessions SessionParser,
) *Server {
	return &Server{
		users:    users,
		catalog:  catalog,
		requests: requests,
		settings: settings,
		sessions: sessions,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	limitAuth := middleware.RateLimitByIP(authBurst, authWindow)
	mux.Handle("POST /api/v1/auth/register", limitAuth(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/v1/auth/login", limitAuth(http.HandlerFunc(s.handleLogin)))

	mux.HandleFunc("GET /api/v1/search/artist", s.requireSession(s.handleSearchArtists))
	mux.HandleFunc("GET /api/v1/search/album", s.requireSession(s.handleSearchAlbums))
	mux.HandleFunc("GET /api/v1/artist/{id}", s.requireSession(s.handleArtist))

	mux.HandleFunc("POST /api/v1/requests", s.requireSession(s.handleCreateRequest))
	mux.HandleFunc("GET /api/v1/requests", s.requireSession(s.handleListMyRequests))

	mux.HandleFunc("GET /api/v1/admin/requests", s.requireAdmin(s.handleListAllRequests))
	mux.HandleFunc("PATCH /api/v1/admin/requests/{id}", s.requireAdmin(s.handleUpdateRequest))
	mux.HandleFunc("DELETE /api/v1/admin/requests/{id}", s.requireAdmin(s.handleDeleteRequest))
	mux.HandleFunc("POST /api/v1/admin/requests/reconcile", s.requireAdmin(s.handleReconcile))

	mux.HandleFunc("GET /api/v1/settings/lidarr", s.requireAdmin(s.handleGetSettings))
	mux.HandleFunc("POST /api/v1/settings/lidarr", s.requireAdmin(s.handleSaveSettings))
	mux.HandleFunc("PUT /api/v1/settings/lidarr", s.requireAdmin(s.handleTestSettings))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

var errUnauthorized = errorResponse{Error: "Unauthorized"}

type sessionHandler func(w http.ResponseWriter, r *http.Request, session auth.Session)

// requireSession resolves the bearer token and rejects anonymous callers.
func (s *Server) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := parseBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errUnauthorized)
			return
		}
		session, err := s.sessions.Parse(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), logging.UserIDKey, session.UserID)
		next(w, r.WithContext(ctx), session)
	}
}

// requireAdmin is requireSession plus an ADMIN role check. Non-admins get
// 401, same as anonymous callers.
func (s *Server) requireAdmin(next sessionHandler) http.HandlerFunc {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request, session auth.Session) {
		if !session.IsAdmin() {
			writeJSON(w, http.StatusUnauthorized, errUnauthorized)
			return
		}
		next(w, r, session)
	})
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// queryInt reads a non-negative integer parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
