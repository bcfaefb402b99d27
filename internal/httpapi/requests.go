package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"recordstore/internal/app/requests"
	"recordstore/internal/auth"
	"recordstore/internal/logging"
	"recordstore/internal/store"
)

type updateRequestBody struct {
	Status    string  `json:"status"`
	AdminNote *string `json:"adminNote"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var body requests.NewRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	created, err := s.requests.Create(r.Context(), session, body)
	if err != nil {
		s.writeRequestError(w, r, err, "Failed to create request")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListMyRequests(w http.ResponseWriter, r *http.Request, session auth.Session) {
	list, err := s.requests.ListByUser(r.Context(), session, r.URL.Query().Get("status"))
	if err != nil {
		s.writeRequestError(w, r, err, "Failed to fetch requests")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListAllRequests(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	list, err := s.requests.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeRequestError(w, r, err, "Failed to fetch requests")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpdateRequest(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	var body updateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	updated, err := s.requests.UpdateStatus(r.Context(), r.PathValue("id"), body.Status, body.AdminNote)
	if err != nil {
		s.writeRequestError(w, r, err, "Failed to update request")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	if err := s.requests.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeRequestError(w, r, err, "Failed to delete request")
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	result, err := s.requests.Reconcile(r.Context())
	if err != nil {
		s.writeRequestError(w, r, err, "Failed to reconcile requests")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, requests.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateRequest):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "You have already requested this item"})
	case errors.Is(err, store.ErrRequestNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Request not found"})
	default:
		logging.WithContext(r.Context()).Error().Err(err).Msg(fallback)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}
