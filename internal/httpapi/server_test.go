package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

type stubUserService struct {
	registeredUser models.User
	registerErr    error

	loginToken string
	loginErr   error

	tokenUser models.User
	tokenErr  error

	lastToken string
}

func (s *stubUserService) Register(_ context.Context, username, password string) (models.User, error) {
	if s.registerErr != nil {
		return models.User{}, s.registerErr
	}
	return s.registeredUser, nil
}

func (s *stubUserService) Login(_ context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	return s.loginToken, nil
}

func (s *stubUserService) Logout(_ context.Context, token string) error {
	s.lastToken = token
	return nil
}

func (s *stubUserService) UserByToken(_ context.Context, token string) (models.User, error) {
	s.lastToken = token
	if s.tokenErr != nil {
		return models.User{}, s.tokenErr
	}
	return s.tokenUser, nil
}

type stubMediaService struct {
	created   models.Media
	createErr error

	searchResults []models.MediaDetails
	searchErr     error

	details    models.MediaDetails
	detailsErr error

	favoriteErr error

	lastCriteria models.SearchCriteria
	lastUserID   int64
}

func (s *stubMediaService) Create(_ context.Context, media models.Media) (models.Media, error) {
	if s.createErr != nil {
		return models.Media{}, s.createErr
	}
	s.created = media
	return media, nil
}

func (s *stubMediaService) Update(context.Context, models.Media) error { return nil }

func (s *stubMediaService) Delete(context.Context, int64) error { return nil }

func (s *stubMediaService) Search(_ context.Context, criteria models.SearchCriteria, userID int64) ([]models.MediaDetails, error) {
	s.lastCriteria = criteria
	s.lastUserID = userID
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResults, nil
}

func (s *stubMediaService) Details(_ context.Context, id, userID int64) (models.MediaDetails, error) {
	if s.detailsErr != nil {
		return models.MediaDetails{}, s.detailsErr
	}
	return s.details, nil
}

func (s *stubMediaService) AddFavorite(_ context.Context, mediaID, userID int64) error {
	return s.favoriteErr
}

func (s *stubMediaService) RemoveFavorite(_ context.Context, mediaID, userID int64) error {
	return s.favoriteErr
}

func (s *stubMediaService) ListFavorites(context.Context, int64) ([]models.MediaDetails, error) {
	return nil, nil
}

func (s *stubMediaService) Recommend(context.Context, int64) ([]models.MediaDetails, error) {
	return s.searchResults, s.searchErr
}

type stubRatingsService struct {
	created    models.Rating
	createErr  error
	updateErr  error
	deleteErr  error
	confirmErr error
	likeErr    error

	lastActingUser int64
}

func (s *stubRatingsService) Create(_ context.Context, rating models.Rating) (models.Rating, error) {
	if s.createErr != nil {
		return models.Rating{}, s.createErr
	}
	s.created = rating
	return rating, nil
}

func (s *stubRatingsService) Update(_ context.Context, rating models.Rating, actingUserID int64) error {
	s.lastActingUser = actingUserID
	return s.updateErr
}

func (s *stubRatingsService) Delete(_ context.Context, id, actingUserID int64) error {
	s.lastActingUser = actingUserID
	return s.deleteErr
}

func (s *stubRatingsService) ConfirmComment(_ context.Context, id, actingUserID int64) error {
	s.lastActingUser = actingUserID
	return s.confirmErr
}

func (s *stubRatingsService) Like(_ context.Context, id, likingUserID int64) error {
	s.lastActingUser = likingUserID
	return s.likeErr
}

func (s *stubRatingsService) Unlike(_ context.Context, id, likingUserID int64) error {
	s.lastActingUser = likingUserID
	return s.likeErr
}

type stubProfileService struct {
	profile    models.UserProfile
	profileErr error

	leaderboard    []models.LeaderboardEntry
	leaderboardErr error

	lastLimit int
}

func (s *stubProfileService) Profile(context.Context, int64) (models.UserProfile, error) {
	if s.profileErr != nil {
		return models.UserProfile{}, s.profileErr
	}
	return s.profile, nil
}

func (s *stubProfileService) RatingHistory(context.Context, int64) ([]models.Rating, error) {
	return nil, nil
}

func (s *stubProfileService) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	s.lastLimit = limit
	if s.leaderboardErr != nil {
		return nil, s.leaderboardErr
	}
	return s.leaderboard, nil
}

func (s *stubProfileService) FavoriteMedia(context.Context, int64) ([]models.MediaDetails, error) {
	return nil, nil
}

func newTestServer(users *stubUserService, media *stubMediaService, ratings *stubRatingsService, profiles *stubProfileService) http.Handler {
	if users == nil {
		users = &stubUserService{}
	}
	if media == nil {
		media = &stubMediaService{}
	}
	if ratings == nil {
		ratings = &stubRatingsService{}
	}
	if profiles == nil {
		profiles = &stubProfileService{}
	}
	return New(users, media, ratings, profiles).Routes()
}

func TestHealth(t *testing.T) {
	handler := newTestServer(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	users := &stubUserService{registeredUser: models.User{ID: 7, Username: "demo"}}
	handler := newTestServer(users, nil, nil, nil)

	body, _ := json.Marshal(map[string]string{"username": "demo", "password": "demo123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 7 || got.Username != "demo" {
		t.Fatalf("unexpected user: %#v", got)
	}
}

func TestRegisterConflict(t *testing.T) {
	users := &stubUserService{registerErr: store.ErrUserExists}
	handler := newTestServer(users, nil, nil, nil)

	body, _ := json.Marshal(map[string]string{"username": "demo", "password": "demo123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterBlankCredentials(t *testing.T) {
	users := &stubUserService{registerErr: store.ErrInvalidUser}
	handler := newTestServer(users, nil, nil, nil)

	body, _ := json.Marshal(map[string]string{"username": "", "password": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	users := &stubUserService{loginErr: store.ErrInvalidCredentials}
	handler := newTestServer(users, nil, nil, nil)

	body, _ := json.Marshal(map[string]string{"username": "demo", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreateMediaRequiresAuth(t *testing.T) {
	handler := newTestServer(nil, nil, nil, nil)

	body, _ := json.Marshal(map[string]any{"title": "Dune", "mediaType": "book", "releaseYear": 1965})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
}

func TestCreateMediaStampsCreator(t *testing.T) {
	users := &stubUserService{tokenUser: models.User{ID: 7, Username: "demo"}}
	media := &stubMediaService{}
	handler := newTestServer(users, media, nil, nil)

	body, _ := json.Marshal(map[string]any{"title": "Dune", "mediaType": "book", "releaseYear": 1965})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if media.created.CreatedBy != 7 {
		t.Fatalf("expected creator 7, got %d", media.created.CreatedBy)
	}
	if users.lastToken != "token" {
		t.Fatalf("expected bearer token to reach the user service, got %q", users.lastToken)
	}
}

func TestSearchMediaParsesCriteria(t *testing.T) {
	media := &stubMediaService{}
	handler := newTestServer(nil, media, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media?title=wire&genre=Drama&minRating=4", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if media.lastCriteria.TitleQuery != "wire" || media.lastCriteria.Genre != "Drama" || media.lastCriteria.MinimumRating != 4 {
		t.Fatalf("unexpected criteria: %#v", media.lastCriteria)
	}
	if media.lastUserID != 0 {
		t.Fatalf("expected anonymous search, got user %d", media.lastUserID)
	}
}

func TestGetMediaNotFound(t *testing.T) {
	media := &stubMediaService{detailsErr: store.ErrMediaNotFound}
	handler := newTestServer(nil, media, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/999", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRatingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "duplicate", err: store.ErrDuplicateRating, wantStatus: http.StatusConflict},
		{name: "invalid stars", err: store.ErrInvalidRating, wantStatus: http.StatusBadRequest},
		{name: "unknown media", err: store.ErrMediaNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := &stubUserService{tokenUser: models.User{ID: 7}}
			ratings := &stubRatingsService{createErr: tc.err}
			handler := newTestServer(users, nil, ratings, nil)

			body, _ := json.Marshal(map[string]any{"mediaId": 1, "stars": 5})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings", bytes.NewReader(body))
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestUpdateRatingForbiddenForNonOwner(t *testing.T) {
	users := &stubUserService{tokenUser: models.User{ID: 9}}
	ratings := &stubRatingsService{updateErr: store.ErrRatingNotOwned}
	handler := newTestServer(users, nil, ratings, nil)

	body, _ := json.Marshal(map[string]any{"stars": 1})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/ratings/33", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if ratings.lastActingUser != 9 {
		t.Fatalf("expected acting user 9, got %d", ratings.lastActingUser)
	}
}

func TestLikeRatingSelfLikeConflict(t *testing.T) {
	users := &stubUserService{tokenUser: models.User{ID: 7}}
	ratings := &stubRatingsService{likeErr: store.ErrSelfLike}
	handler := newTestServer(users, nil, ratings, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings/33/like", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestConfirmCommentMissingText(t *testing.T) {
	users := &stubUserService{tokenUser: models.User{ID: 7}}
	ratings := &stubRatingsService{confirmErr: store.ErrCommentMissing}
	handler := newTestServer(users, nil, ratings, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ratings/33/confirm", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	profiles := &stubProfileService{leaderboard: []models.LeaderboardEntry{{Username: "top", RatingCount: 10}}}
	handler := newTestServer(nil, nil, nil, profiles)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if profiles.lastLimit != 1 {
		t.Fatalf("expected limit 1, got %d", profiles.lastLimit)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "top" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
}

func TestLeaderboardRejectsBadLimit(t *testing.T) {
	handler := newTestServer(nil, nil, nil, &stubProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?limit=zero", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	handler := newTestServer(nil, nil, nil, &stubProfileService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
