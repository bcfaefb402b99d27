package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"recordstore/internal/app/users"
	"recordstore/internal/auth"
	"recordstore/internal/logging"
	"recordstore/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "User with this email or username already exists"})
		default:
			logging.WithContext(r.Context()).Error().Err(err).Msg("register user")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to create user"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		logging.WithContext(r.Context()).Error().Err(err).Msg("login")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to log in"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
