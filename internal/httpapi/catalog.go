package httpapi

import (
	"errors"
	"net/http"

	"recordstore/internal/auth"
	"recordstore/internal/logging"
	"recordstore/internal/ratelimit"
)

const defaultSearchLimit = 25

func (s *Server) handleSearchArtists(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query parameter 'q' is required"})
		return
	}

	results, err := s.catalog.SearchArtists(r.Context(), query, queryInt(r, "limit", defaultSearchLimit), queryInt(r, "offset", 0))
	if err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Str("query", query).Msg("search artists")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to search artists"})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleSearchAlbums(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Query parameter 'q' is required"})
		return
	}

	results, err := s.catalog.SearchAlbums(r.Context(), query, queryInt(r, "limit", defaultSearchLimit), queryInt(r, "offset", 0))
	if err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Str("query", query).Msg("search albums")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to search albums"})
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	id := r.PathValue("id")

	detail, err := s.catalog.ArtistDetail(r.Context(), id)
	if err != nil {
		var upstream *ratelimit.UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Artist not found"})
			return
		}
		logging.WithContext(r.Context()).Error().Err(err).Str("artist_id", id).Msg("artist detail")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch artist details"})
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
