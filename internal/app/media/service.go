package media

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// CatalogStore captures the persistence needs for catalog workflows.
type CatalogStore interface {
	CreateMedia(ctx context.Context, media models.Media) (models.Media, error)
	MediaByID(ctx context.Context, id int64) (models.Media, error)
	ListMedia(ctx context.Context) ([]models.Media, error)
	UpdateMedia(ctx context.Context, media models.Media) error
	DeleteMedia(ctx context.Context, id int64) error
}

// RatingStore captures the rating queries needed to assemble media details.
type RatingStore interface {
	RatingsByMedia(ctx context.Context, mediaID int64) ([]models.Rating, error)
	RatingsByUser(ctx context.Context, userID int64) ([]models.Rating, error)
	SummarizeByMediaIDs(ctx context.Context, mediaIDs []int64) ([]models.RatingSummary, error)
}

// FavoriteStore captures the favorite membership operations.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, userID, mediaID int64) error
	RemoveFavorite(ctx context.Context, userID, mediaID int64) error
	IsFavorite(ctx context.Context, userID, mediaID int64) (bool, error)
	FavoriteMediaIDs(ctx context.Context, userID int64) ([]int64, error)
	CountFavoritesForMedia(ctx context.Context, mediaID int64) (int, error)
}

// Service coordinates catalog mutation, search, favorites and recommendations.
type Service interface {
	Create(ctx context.Context, media models.Media) (models.Media, error)
	Get(ctx context.Context, id int64) (models.Media, error)
	Update(ctx context.Context, media models.Media) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, criteria models.SearchCriteria, requestingUserID int64) ([]models.MediaDetails, error)
	Details(ctx context.Context, id, requestingUserID int64) (models.MediaDetails, error)
	AddFavorite(ctx context.Context, mediaID, userID int64) error
	RemoveFavorite(ctx context.Context, mediaID, userID int64) error
	ListFavorites(ctx context.Context, userID int64) ([]models.MediaDetails, error)
	Recommend(ctx context.Context, userID int64) ([]models.MediaDetails, error)
}

type service struct {
	catalog   CatalogStore
	ratings   RatingStore
	favorites FavoriteStore
}

// New constructs a media Service backed by the given stores.
func New(catalog CatalogStore, ratings RatingStore, favorites FavoriteStore) Service {
	return &service{catalog: catalog, ratings: ratings, favorites: favorites}
}

// Create validates and persists a new catalog entry, returning it with the
// assigned identity. The store is left untouched on validation failure.
func (s *service) Create(ctx context.Context, media models.Media) (models.Media, error) {
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	if err := validateMedia(media); err != nil {
		return models.Media{}, err
	}

	media.Title = strings.TrimSpace(media.Title)
	media.MediaType = strings.TrimSpace(media.MediaType)

	return s.catalog.CreateMedia(ctx, media)
}

func (s *service) Get(ctx context.Context, id int64) (models.Media, error) {
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	return s.catalog.MediaByID(ctx, id)
}

// Update overwrites an existing entry; unknown identities fail without effect.
func (s *service) Update(ctx context.Context, media models.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateMedia(media); err != nil {
		return err
	}
	return s.catalog.UpdateMedia(ctx, media)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.catalog.DeleteMedia(ctx, id)
}

// Search returns details for every entry satisfying all supplied criteria.
// Absent criteria impose no constraint; the title match is a case-insensitive
// substring, the genre match a case-insensitive exact tag match, and the
// minimum rating is compared against the live average.
func (s *service) Search(ctx context.Context, criteria models.SearchCriteria, requestingUserID int64) ([]models.MediaDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.ListMedia(ctx)
	if err != nil {
		return nil, err
	}

	titleQuery := strings.ToLower(strings.TrimSpace(criteria.TitleQuery))
	genre := strings.TrimSpace(criteria.Genre)

	var candidates []models.Media
	for _, media := range catalog {
		if titleQuery != "" && !strings.Contains(strings.ToLower(media.Title), titleQuery) {
			continue
		}
		if genre != "" && !hasGenre(media.Genres, genre) {
			continue
		}
		candidates = append(candidates, media)
	}

	details, err := s.assembleDetails(ctx, candidates, requestingUserID)
	if err != nil {
		return nil, err
	}

	if criteria.MinimumRating > 0 {
		filtered := details[:0]
		for _, d := range details {
			if d.AverageRating >= criteria.MinimumRating {
				filtered = append(filtered, d)
			}
		}
		details = filtered
	}

	return details, nil
}

// Details assembles the composite view for a single entry.
func (s *service) Details(ctx context.Context, id, requestingUserID int64) (models.MediaDetails, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaDetails{}, err
	}

	media, err := s.catalog.MediaByID(ctx, id)
	if err != nil {
		return models.MediaDetails{}, err
	}

	details, err := s.assembleDetails(ctx, []models.Media{media}, requestingUserID)
	if err != nil {
		return models.MediaDetails{}, err
	}
	return details[0], nil
}

// AddFavorite bookmarks an existing entry; duplicates are rejected.
func (s *service) AddFavorite(ctx context.Context, mediaID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.catalog.MediaByID(ctx, mediaID); err != nil {
		return err
	}
	return s.favorites.AddFavorite(ctx, userID, mediaID)
}

func (s *service) RemoveFavorite(ctx context.Context, mediaID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.favorites.RemoveFavorite(ctx, userID, mediaID)
}

// ListFavorites returns details for every entry the user bookmarked, in the
// order the bookmarks were added.
func (s *service) ListFavorites(ctx context.Context, userID int64) ([]models.MediaDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mediaIDs, err := s.favorites.FavoriteMediaIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	favorited := make([]models.Media, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		media, err := s.catalog.MediaByID(ctx, id)
		if err != nil {
			return nil, err
		}
		favorited = append(favorited, media)
	}

	return s.assembleDetails(ctx, favorited, userID)
}

// Recommend ranks the catalog for a user. Without any rating or favorite
// history the whole catalog is returned ordered by popularity (rating count
// descending, creation order on ties). With history, unrated entries are
// scored by overlap with the genres of entries the user rated four stars or
// better or favorited, with popularity breaking ties.
func (s *service) Recommend(ctx context.Context, userID int64) ([]models.MediaDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userRatings, err := s.ratings.RatingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	favoriteIDs, err := s.favorites.FavoriteMediaIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.ListMedia(ctx)
	if err != nil {
		return nil, err
	}

	if len(userRatings) == 0 && len(favoriteIDs) == 0 {
		details, err := s.assembleDetails(ctx, catalog, userID)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(details, func(i, j int) bool {
			return details[i].RatingCount > details[j].RatingCount
		})
		return details, nil
	}

	byID := make(map[int64]models.Media, len(catalog))
	for _, media := range catalog {
		byID[media.ID] = media
	}

	rated := make(map[int64]bool, len(userRatings))
	weights := make(map[string]int)
	for _, rating := range userRatings {
		rated[rating.MediaID] = true
		if rating.Stars < 4 {
			continue
		}
		if media, ok := byID[rating.MediaID]; ok {
			addGenreWeights(weights, media.Genres)
		}
	}
	for _, id := range favoriteIDs {
		if media, ok := byID[id]; ok {
			addGenreWeights(weights, media.Genres)
		}
	}

	var unrated []models.Media
	for _, media := range catalog {
		if !rated[media.ID] {
			unrated = append(unrated, media)
		}
	}

	details, err := s.assembleDetails(ctx, unrated, userID)
	if err != nil {
		return nil, err
	}

	score := func(d models.MediaDetails) int {
		total := 0
		for _, genre := range d.Media.Genres {
			total += weights[strings.ToLower(genre)]
		}
		return total
	}
	sort.SliceStable(details, func(i, j int) bool {
		si, sj := score(details[i]), score(details[j])
		if si != sj {
			return si > sj
		}
		return details[i].RatingCount > details[j].RatingCount
	})

	return details, nil
}

// assembleDetails joins rating aggregates and favorite figures onto each
// entry. One summary query covers all ids; per-media reads fill in the rest.
func (s *service) assembleDetails(ctx context.Context, catalog []models.Media, requestingUserID int64) ([]models.MediaDetails, error) {
	if len(catalog) == 0 {
		return nil, nil
	}

	mediaIDs := make([]int64, 0, len(catalog))
	for _, media := range catalog {
		mediaIDs = append(mediaIDs, media.ID)
	}

	summaries, err := s.ratings.SummarizeByMediaIDs(ctx, mediaIDs)
	if err != nil {
		return nil, err
	}
	summaryByID := make(map[int64]models.RatingSummary, len(summaries))
	for _, summary := range summaries {
		summaryByID[summary.MediaID] = summary
	}

	details := make([]models.MediaDetails, 0, len(catalog))
	for _, media := range catalog {
		ratings, err := s.ratings.RatingsByMedia(ctx, media.ID)
		if err != nil {
			return nil, err
		}
		favoritesCount, err := s.favorites.CountFavoritesForMedia(ctx, media.ID)
		if err != nil {
			return nil, err
		}
		favorited, err := s.favorites.IsFavorite(ctx, requestingUserID, media.ID)
		if err != nil {
			return nil, err
		}

		summary := summaryByID[media.ID]
		details = append(details, models.MediaDetails{
			Media:           media,
			AverageRating:   summary.AverageScore,
			RatingCount:     summary.RatingCount,
			FavoritesCount:  favoritesCount,
			FavoriteForUser: favorited,
			Ratings:         ratings,
		})
	}

	return details, nil
}

func validateMedia(media models.Media) error {
	switch {
	case strings.TrimSpace(media.Title) == "":
		return fmt.Errorf("%w: title is required", store.ErrInvalidMedia)
	case strings.TrimSpace(media.MediaType) == "":
		return fmt.Errorf("%w: media type is required", store.ErrInvalidMedia)
	case media.ReleaseYear <= 0:
		return fmt.Errorf("%w: release year is required", store.ErrInvalidMedia)
	}
	return nil
}

func hasGenre(genres []string, genre string) bool {
	for _, g := range genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

func addGenreWeights(weights map[string]int, genres []string) {
	for _, genre := range genres {
		weights[strings.ToLower(genre)]++
	}
}
