package httpapi

import (
	"encoding/json"
	"net/http"

	"recordstore/internal/app/settings"
	"recordstore/internal/auth"
	"recordstore/internal/logging"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	values, err := s.settings.Get(r.Context())
	if err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Msg("get settings")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch settings"})
		return
	}

	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	var update settings.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.settings.Save(r.Context(), update); err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Msg("save settings")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to save settings"})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleTestSettings always answers 200; the outcome is in the body.
func (s *Server) handleTestSettings(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	result, err := s.settings.Test(r.Context())
	if err != nil {
		var failed settings.TestResult
		failed.Error = err.Error()
		writeJSON(w, http.StatusOK, failed)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
