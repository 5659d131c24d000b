// Package memory provides an in-memory implementation of the store contracts.
// It mirrors the sentinel-error behavior of the Postgres store and is used by
// the service tests and the demo mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// Store keeps all state in process memory guarded by a single RWMutex, which
// closes the same check-then-act races the SQL constraints close in Postgres.
type Store struct {
	mu sync.RWMutex

	media      map[int64]models.Media
	mediaOrder []int64

	ratings     map[int64]models.Rating
	ratingOrder []int64
	likes       map[int64]map[int64]struct{}

	favorites map[int64][]int64 // user id -> media ids in insertion order

	users map[int64]models.User

	nextMediaID  int64
	nextRatingID int64
	nextUserID   int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		media:        make(map[int64]models.Media),
		ratings:      make(map[int64]models.Rating),
		likes:        make(map[int64]map[int64]struct{}),
		favorites:    make(map[int64][]int64),
		users:        make(map[int64]models.User),
		nextMediaID:  1,
		nextRatingID: 1,
		nextUserID:   1,
	}
}

// CreateMedia assigns an id and stores a copy of the entry.
func (s *Store) CreateMedia(_ context.Context, media models.Media) (models.Media, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	media.ID = s.nextMediaID
	s.nextMediaID++
	s.media[media.ID] = cloneMedia(media)
	s.mediaOrder = append(s.mediaOrder, media.ID)
	return media, nil
}

// MediaByID returns a copy of the stored entry.
func (s *Store) MediaByID(_ context.Context, id int64) (models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	media, ok := s.media[id]
	if !ok {
		return models.Media{}, store.ErrMediaNotFound
	}
	return cloneMedia(media), nil
}

// ListMedia returns the catalog in creation order.
func (s *Store) ListMedia(_ context.Context) ([]models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	media := make([]models.Media, 0, len(s.mediaOrder))
	for _, id := range s.mediaOrder {
		media = append(media, cloneMedia(s.media[id]))
	}
	return media, nil
}

// UpdateMedia overwrites an existing entry.
func (s *Store) UpdateMedia(_ context.Context, media models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.media[media.ID]; !ok {
		return store.ErrMediaNotFound
	}
	s.media[media.ID] = cloneMedia(media)
	return nil
}

// DeleteMedia removes an entry and cascades to its ratings and favorites.
func (s *Store) DeleteMedia(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.media[id]; !ok {
		return store.ErrMediaNotFound
	}
	delete(s.media, id)
	s.mediaOrder = slices.DeleteFunc(s.mediaOrder, func(v int64) bool { return v == id })

	for ratingID, rating := range s.ratings {
		if rating.MediaID == id {
			delete(s.ratings, ratingID)
			delete(s.likes, ratingID)
			s.ratingOrder = slices.DeleteFunc(s.ratingOrder, func(v int64) bool { return v == ratingID })
		}
	}
	for userID, mediaIDs := range s.favorites {
		s.favorites[userID] = slices.DeleteFunc(mediaIDs, func(v int64) bool { return v == id })
	}
	return nil
}

// CreateRating stores a rating, rejecting a second rating for the same
// (media, user) pair.
func (s *Store) CreateRating(_ context.Context, rating models.Rating) (models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ratings {
		if existing.MediaID == rating.MediaID && existing.UserID == rating.UserID {
			return models.Rating{}, store.ErrDuplicateRating
		}
	}

	rating.ID = s.nextRatingID
	s.nextRatingID++
	s.ratings[rating.ID] = cloneRating(rating)
	s.ratingOrder = append(s.ratingOrder, rating.ID)
	s.likes[rating.ID] = make(map[int64]struct{})
	return rating, nil
}

// RatingByID returns a copy of a rating with its like set materialized.
func (s *Store) RatingByID(_ context.Context, id int64) (models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rating, ok := s.ratings[id]
	if !ok {
		return models.Rating{}, store.ErrRatingNotFound
	}
	return s.withLikes(rating), nil
}

// RatingByMediaAndUser returns the rating a user gave a media entry, if any.
func (s *Store) RatingByMediaAndUser(_ context.Context, mediaID, userID int64) (models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.ratingOrder {
		rating := s.ratings[id]
		if rating.MediaID == mediaID && rating.UserID == userID {
			return s.withLikes(rating), nil
		}
	}
	return models.Rating{}, store.ErrRatingNotFound
}

// RatingsByMedia lists ratings for a media entry in creation order.
func (s *Store) RatingsByMedia(_ context.Context, mediaID int64) ([]models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ratings []models.Rating
	for _, id := range s.ratingOrder {
		if rating := s.ratings[id]; rating.MediaID == mediaID {
			ratings = append(ratings, s.withLikes(rating))
		}
	}
	return ratings, nil
}

// RatingsByUser lists a user's ratings in creation order.
func (s *Store) RatingsByUser(_ context.Context, userID int64) ([]models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ratings []models.Rating
	for _, id := range s.ratingOrder {
		if rating := s.ratings[id]; rating.UserID == userID {
			ratings = append(ratings, s.withLikes(rating))
		}
	}
	return ratings, nil
}

// UpdateRating overwrites stars, comment and the confirmation flag.
func (s *Store) UpdateRating(_ context.Context, rating models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.ratings[rating.ID]
	if !ok {
		return store.ErrRatingNotFound
	}
	stored.Stars = rating.Stars
	stored.Comment = rating.Comment
	stored.CommentConfirmed = rating.CommentConfirmed
	s.ratings[rating.ID] = stored
	return nil
}

// DeleteRating removes a rating and its likes.
func (s *Store) DeleteRating(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ratings[id]; !ok {
		return store.ErrRatingNotFound
	}
	delete(s.ratings, id)
	delete(s.likes, id)
	s.ratingOrder = slices.DeleteFunc(s.ratingOrder, func(v int64) bool { return v == id })
	return nil
}

// SummarizeByMediaIDs computes per-media averages; media without ratings are
// skipped.
func (s *Store) SummarizeByMediaIDs(_ context.Context, mediaIDs []int64) ([]models.RatingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summaries []models.RatingSummary
	for _, mediaID := range mediaIDs {
		var sum, count int
		for _, id := range s.ratingOrder {
			if rating := s.ratings[id]; rating.MediaID == mediaID {
				sum += rating.Stars
				count++
			}
		}
		if count == 0 {
			continue
		}
		summaries = append(summaries, models.RatingSummary{
			MediaID:      mediaID,
			AverageScore: float64(sum) / float64(count),
			RatingCount:  count,
		})
	}
	return summaries, nil
}

// RatingCountsPerUser returns the top raters sorted by count descending.
func (s *Store) RatingCountsPerUser(_ context.Context, limit int) ([]models.UserRatingCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int64]int64)
	for _, rating := range s.ratings {
		totals[rating.UserID]++
	}

	counts := make([]models.UserRatingCount, 0, len(totals))
	for userID, total := range totals {
		counts = append(counts, models.UserRatingCount{UserID: userID, RatingCount: total})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].RatingCount != counts[j].RatingCount {
			return counts[i].RatingCount > counts[j].RatingCount
		}
		return counts[i].UserID < counts[j].UserID
	})

	if limit >= 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts, nil
}

// ConfirmComment marks a rating's comment as confirmed.
func (s *Store) ConfirmComment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rating, ok := s.ratings[id]
	if !ok {
		return store.ErrRatingNotFound
	}
	rating.CommentConfirmed = true
	s.ratings[id] = rating
	return nil
}

// AddLike records a like, rejecting duplicates.
func (s *Store) AddLike(_ context.Context, ratingID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	likers, ok := s.likes[ratingID]
	if !ok {
		return store.ErrRatingNotFound
	}
	if _, liked := likers[userID]; liked {
		return store.ErrAlreadyLiked
	}
	likers[userID] = struct{}{}
	return nil
}

// RemoveLike withdraws a like.
func (s *Store) RemoveLike(_ context.Context, ratingID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	likers, ok := s.likes[ratingID]
	if !ok {
		return store.ErrRatingNotFound
	}
	if _, liked := likers[userID]; !liked {
		return store.ErrLikeNotFound
	}
	delete(likers, userID)
	return nil
}

// Likes returns the ids of users who liked a rating, ascending.
func (s *Store) Likes(_ context.Context, ratingID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	likers, ok := s.likes[ratingID]
	if !ok {
		return nil, store.ErrRatingNotFound
	}
	return sortedLikers(likers), nil
}

// AddFavorite bookmarks a media entry, rejecting duplicates.
func (s *Store) AddFavorite(_ context.Context, userID, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.favorites[userID], mediaID) {
		return store.ErrFavoriteExists
	}
	s.favorites[userID] = append(s.favorites[userID], mediaID)
	return nil
}

// RemoveFavorite drops a bookmark.
func (s *Store) RemoveFavorite(_ context.Context, userID, mediaID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.favorites[userID], mediaID) {
		return store.ErrFavoriteNotFound
	}
	s.favorites[userID] = slices.DeleteFunc(s.favorites[userID], func(v int64) bool { return v == mediaID })
	return nil
}

// IsFavorite reports whether the user bookmarked the media entry.
func (s *Store) IsFavorite(_ context.Context, userID, mediaID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Contains(s.favorites[userID], mediaID), nil
}

// FavoriteMediaIDs lists a user's bookmarks in insertion order.
func (s *Store) FavoriteMediaIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.favorites[userID]), nil
}

// CountFavoritesForMedia counts the users who bookmarked the media entry.
func (s *Store) CountFavoritesForMedia(_ context.Context, mediaID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, mediaIDs := range s.favorites {
		if slices.Contains(mediaIDs, mediaID) {
			count++
		}
	}
	return count, nil
}

// CreateUser stores a new account, rejecting duplicate usernames.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return models.User{}, store.ErrUserExists
		}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return user, nil
}

// UserByUsername looks an account up by username.
func (s *Store) UserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

// UserByID looks an account up by id.
func (s *Store) UserByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) withLikes(rating models.Rating) models.Rating {
	clone := cloneRating(rating)
	clone.LikedBy = sortedLikers(s.likes[rating.ID])
	return clone
}

func sortedLikers(likers map[int64]struct{}) []int64 {
	if len(likers) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(likers))
	for id := range likers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func cloneMedia(media models.Media) models.Media {
	media.Genres = slices.Clone(media.Genres)
	return media
}

func cloneRating(rating models.Rating) models.Rating {
	rating.LikedBy = slices.Clone(rating.LikedBy)
	return rating
}
