package profiles

import (
	"context"
	"errors"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// UserStore resolves user accounts.
type UserStore interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// RatingStore captures the rating queries behind profile statistics.
type RatingStore interface {
	RatingsByUser(ctx context.Context, userID int64) ([]models.Rating, error)
	RatingCountsPerUser(ctx context.Context, limit int) ([]models.UserRatingCount, error)
}

// FavoriteStore lists a user's bookmarked media ids.
type FavoriteStore interface {
	FavoriteMediaIDs(ctx context.Context, userID int64) ([]int64, error)
}

// MediaService is the slice of the media service the profile service composes:
// plain catalog lookups for genre aggregation and the favorites listing.
type MediaService interface {
	Get(ctx context.Context, id int64) (models.Media, error)
	ListFavorites(ctx context.Context, userID int64) ([]models.MediaDetails, error)
}

// Service exposes per-user aggregate statistics and the public leaderboard.
type Service interface {
	Profile(ctx context.Context, userID int64) (models.UserProfile, error)
	RatingHistory(ctx context.Context, userID int64) ([]models.Rating, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	FavoriteMedia(ctx context.Context, userID int64) ([]models.MediaDetails, error)
}

type service struct {
	users     UserStore
	ratings   RatingStore
	favorites FavoriteStore
	media     MediaService
}

// New constructs a profile Service backed by the given stores and the media
// service.
func New(users UserStore, ratings RatingStore, favorites FavoriteStore, media MediaService) Service {
	return &service{users: users, ratings: ratings, favorites: favorites, media: media}
}

// Profile aggregates a user's rating statistics and favorite genre. The
// favorite genre is the tag occurring most often across the user's favorited
// media, ties broken by first occurrence in favorites order.
func (s *service) Profile(ctx context.Context, userID int64) (models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return models.UserProfile{}, err
	}

	if _, err := s.users.UserByID(ctx, userID); err != nil {
		return models.UserProfile{}, err
	}

	userRatings, err := s.ratings.RatingsByUser(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	var average float64
	if len(userRatings) > 0 {
		sum := 0
		for _, rating := range userRatings {
			sum += rating.Stars
		}
		average = float64(sum) / float64(len(userRatings))
	}

	favoriteIDs, err := s.favorites.FavoriteMediaIDs(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	favoriteGenre, err := s.favoriteGenre(ctx, favoriteIDs)
	if err != nil {
		return models.UserProfile{}, err
	}

	return models.UserProfile{
		UserID:         userID,
		TotalRatings:   len(userRatings),
		AverageRating:  average,
		FavoriteGenre:  favoriteGenre,
		FavoritesCount: len(favoriteIDs),
	}, nil
}

// RatingHistory returns every rating the user authored, in store order.
func (s *service) RatingHistory(ctx context.Context, userID int64) ([]models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.ratings.RatingsByUser(ctx, userID)
}

// Leaderboard returns the top raters with their usernames, descending by
// rating count. Users without ratings never appear.
func (s *service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts, err := s.ratings.RatingCountsPerUser(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(counts))
	for _, count := range counts {
		user, err := s.users.UserByID(ctx, count.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, models.LeaderboardEntry{
			Username:    user.Username,
			RatingCount: count.RatingCount,
		})
	}

	return entries, nil
}

// FavoriteMedia delegates to the media service's favorites listing.
func (s *service) FavoriteMedia(ctx context.Context, userID int64) ([]models.MediaDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.media.ListFavorites(ctx, userID)
}

func (s *service) favoriteGenre(ctx context.Context, favoriteIDs []int64) (string, error) {
	counts := make(map[string]int)
	var order []string

	for _, id := range favoriteIDs {
		media, err := s.media.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrMediaNotFound) {
				continue
			}
			return "", err
		}
		for _, genre := range media.Genres {
			if counts[genre] == 0 {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	var best string
	bestCount := 0
	for _, genre := range order {
		if counts[genre] > bestCount {
			best = genre
			bestCount = counts[genre]
		}
	}
	return best, nil
}
