package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mediashelf/shared/go/models"
)

type mediaRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	MediaType      string   `json:"mediaType"`
	ReleaseYear    int      `json:"releaseYear"`
	AgeRestriction string   `json:"ageRestriction"`
	Genres         []string `json:"genres"`
}

func (s *Server) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	created, err := s.media.Create(r.Context(), models.Media{
		Title:          req.Title,
		Description:    req.Description,
		MediaType:      req.MediaType,
		ReleaseYear:    req.ReleaseYear,
		AgeRestriction: req.AgeRestriction,
		Genres:         req.Genres,
		CreatedBy:      user.ID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSearchMedia(w http.ResponseWriter, r *http.Request) {
	criteria := models.SearchCriteria{
		TitleQuery: r.URL.Query().Get("title"),
		Genre:      r.URL.Query().Get("genre"),
	}
	if raw := r.URL.Query().Get("minRating"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid minRating"})
			return
		}
		criteria.MinimumRating = min
	}

	results, err := s.media.Search(r.Context(), criteria, s.optionalUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid media id"})
		return
	}

	details, err := s.media.Details(r.Context(), id, s.optionalUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid media id"})
		return
	}

	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := s.media.Update(r.Context(), models.Media{
		ID:             id,
		Title:          req.Title,
		Description:    req.Description,
		MediaType:      req.MediaType,
		ReleaseYear:    req.ReleaseYear,
		AgeRestriction: req.AgeRestriction,
		Genres:         req.Genres,
		CreatedBy:      user.ID,
	}); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid media id"})
		return
	}

	if err := s.media.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid media id"})
		return
	}

	if err := s.media.AddFavorite(r.Context(), id, user.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid media id"})
		return
	}

	if err := s.media.RemoveFavorite(r.Context(), id, user.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	favorites, err := s.media.ListFavorites(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	recommendations, err := s.media.Recommend(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendations)
}
