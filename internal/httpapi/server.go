package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (models.User, error)
}

// MediaService exposes catalog, favorite and recommendation workflows.
type MediaService interface {
	Create(ctx context.Context, media models.Media) (models.Media, error)
	Update(ctx context.Context, media models.Media) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, criteria models.SearchCriteria, requestingUserID int64) ([]models.MediaDetails, error)
	Details(ctx context.Context, id, requestingUserID int64) (models.MediaDetails, error)
	AddFavorite(ctx context.Context, mediaID, userID int64) error
	RemoveFavorite(ctx context.Context, mediaID, userID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]models.MediaDetails, error)
	Recommend(ctx context.Context, userID int64) ([]models.MediaDetails, error)
}

// RatingsService describes the rating lifecycle workflows.
type RatingsService interface {
	Create(ctx context.Context, rating models.Rating) (models.Rating, error)
	Update(ctx context.Context, rating models.Rating, actingUserID int64) error
	Delete(ctx context.Context, id, actingUserID int64) error
	ConfirmComment(ctx context.Context, id, actingUserID int64) error
	Like(ctx context.Context, id, likingUserID int64) error
	Unlike(ctx context.Context, id, likingUserID int64) error
}

// ProfileService exposes aggregate user statistics.
type ProfileService interface {
	Profile(ctx context.Context, userID int64) (models.UserProfile, error)
	RatingHistory(ctx context.Context, userID int64) ([]models.Rating, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	FavoriteMedia(ctx context.Context, userID int64) ([]models.MediaDetails, error)
}

// Server bundles the services behind the HTTP surface.
type Server struct {
	users    UserService
	media    MediaService
	ratings  RatingsService
	profiles ProfileService
}

// New wires a Server from the given services.
func New(users UserService, media MediaService, ratings RatingsService, profiles ProfileService) *Server {
	return &Server{users: users, media: media, ratings: ratings, profiles: profiles}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)

	// Catalog
	mux.HandleFunc("GET /api/v1/media", s.handleSearchMedia)
	mux.HandleFunc("POST /api/v1/media", s.handleCreateMedia)
	mux.HandleFunc("GET /api/v1/media/{id}", s.handleGetMedia)
	mux.HandleFunc("PUT /api/v1/media/{id}", s.handleUpdateMedia)
	mux.HandleFunc("DELETE /api/v1/media/{id}", s.handleDeleteMedia)

	// Favorites and recommendations
	mux.HandleFunc("POST /api/v1/media/{id}/favorite", s.handleAddFavorite)
	mux.HandleFunc("DELETE /api/v1/media/{id}/favorite", s.handleRemoveFavorite)
	mux.HandleFunc("GET /api/v1/me/favorites", s.handleListFavorites)
	mux.HandleFunc("GET /api/v1/me/recommendations", s.handleRecommendations)

	// Ratings
	mux.HandleFunc("POST /api/v1/ratings", s.handleCreateRating)
	mux.HandleFunc("PUT /api/v1/ratings/{id}", s.handleUpdateRating)
	mux.HandleFunc("DELETE /api/v1/ratings/{id}", s.handleDeleteRating)
	mux.HandleFunc("POST /api/v1/ratings/{id}/confirm", s.handleConfirmComment)
	mux.HandleFunc("POST /api/v1/ratings/{id}/like", s.handleLikeRating)
	mux.HandleFunc("DELETE /api/v1/ratings/{id}/like", s.handleUnlikeRating)

	// Profiles
	mux.HandleFunc("GET /api/v1/me/profile", s.handleProfile)
	mux.HandleFunc("GET /api/v1/me/ratings", s.handleRatingHistory)
	mux.HandleFunc("GET /api/v1/leaderboard", s.handleLeaderboard)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error()})
}

// statusForError translates the service error vocabulary into HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidMedia),
		errors.Is(err, store.ErrInvalidRating),
		errors.Is(err, store.ErrInvalidUser),
		errors.Is(err, store.ErrCommentMissing):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrUnauthorized),
		errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrRatingNotOwned):
		return http.StatusForbidden
	case errors.Is(err, store.ErrMediaNotFound),
		errors.Is(err, store.ErrRatingNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrFavoriteNotFound),
		errors.Is(err, store.ErrLikeNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateRating),
		errors.Is(err, store.ErrFavoriteExists),
		errors.Is(err, store.ErrAlreadyLiked),
		errors.Is(err, store.ErrSelfLike),
		errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func extractToken(r *http.Request) string {
	return parseBearerToken(r.Header.Get("Authorization"))
}

func parseBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// requireUser resolves the authenticated caller or writes a 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return models.User{}, false
	}

	user, err := s.users.UserByToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return models.User{}, false
	}
	return user, true
}

// optionalUserID resolves the caller's user id if a valid token is present,
// zero otherwise. Read endpoints personalize results but never require auth.
func (s *Server) optionalUserID(r *http.Request) int64 {
	token := extractToken(r)
	if token == "" {
		return 0
	}
	user, err := s.users.UserByToken(r.Context(), token)
	if err != nil {
		return 0
	}
	return user.ID
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
