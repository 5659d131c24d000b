package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// RatingStore defines the persistence hooks for rating workflows.
type RatingStore interface {
	CreateRating(ctx context.Context, rating models.Rating) (models.Rating, error)
	RatingByID(ctx context.Context, id int64) (models.Rating, error)
	RatingByMediaAndUser(ctx context.Context, mediaID, userID int64) (models.Rating, error)
	UpdateRating(ctx context.Context, rating models.Rating) error
	DeleteRating(ctx context.Context, id int64) error
	ConfirmComment(ctx context.Context, id int64) error
	AddLike(ctx context.Context, ratingID, userID int64) error
	RemoveLike(ctx context.Context, ratingID, userID int64) error
	Likes(ctx context.Context, ratingID int64) ([]int64, error)
}

// CatalogStore is the catalog lookup needed to reject ratings of unknown media.
type CatalogStore interface {
	MediaByID(ctx context.Context, id int64) (models.Media, error)
}

// Service coordinates the rating lifecycle: creation, edits, comment
// confirmation and likes.
type Service interface {
	Create(ctx context.Context, rating models.Rating) (models.Rating, error)
	Update(ctx context.Context, rating models.Rating, actingUserID int64) error
	Delete(ctx context.Context, id, actingUserID int64) error
	ConfirmComment(ctx context.Context, id, actingUserID int64) error
	Like(ctx context.Context, id, likingUserID int64) error
	Unlike(ctx context.Context, id, likingUserID int64) error
}

type service struct {
	ratings RatingStore
	catalog CatalogStore
}

// New constructs a ratings Service backed by the given stores.
func New(ratings RatingStore, catalog CatalogStore) Service {
	return &service{ratings: ratings, catalog: catalog}
}

// Create persists a new rating. The referenced media must exist and the user
// must not have rated it before. The comment always starts unconfirmed.
func (s *service) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	if err := ctx.Err(); err != nil {
		return models.Rating{}, err
	}
	if err := validateStars(rating.Stars); err != nil {
		return models.Rating{}, err
	}
	if _, err := s.catalog.MediaByID(ctx, rating.MediaID); err != nil {
		return models.Rating{}, err
	}
	if _, err := s.ratings.RatingByMediaAndUser(ctx, rating.MediaID, rating.UserID); err == nil {
		return models.Rating{}, store.ErrDuplicateRating
	} else if !errors.Is(err, store.ErrRatingNotFound) {
		return models.Rating{}, err
	}

	rating.CommentConfirmed = false
	rating.LikedBy = nil
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}

	return s.ratings.CreateRating(ctx, rating)
}

// Update overwrites stars and comment of an owned rating. Any edit resets the
// comment confirmation.
func (s *service) Update(ctx context.Context, rating models.Rating, actingUserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateStars(rating.Stars); err != nil {
		return err
	}

	stored, err := s.ownedRating(ctx, rating.ID, actingUserID)
	if err != nil {
		return err
	}

	stored.Stars = rating.Stars
	stored.Comment = rating.Comment
	stored.CommentConfirmed = false

	return s.ratings.UpdateRating(ctx, stored)
}

// Delete removes an owned rating.
func (s *service) Delete(ctx context.Context, id, actingUserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.ownedRating(ctx, id, actingUserID); err != nil {
		return err
	}
	return s.ratings.DeleteRating(ctx, id)
}

// ConfirmComment marks the comment of an owned rating as confirmed. Blank
// comments cannot be confirmed.
func (s *service) ConfirmComment(ctx context.Context, id, actingUserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored, err := s.ownedRating(ctx, id, actingUserID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(stored.Comment) == "" {
		return store.ErrCommentMissing
	}

	return s.ratings.ConfirmComment(ctx, id)
}

// Like records that a user liked another user's rating. Self-likes and double
// likes are rejected.
func (s *service) Like(ctx context.Context, id, likingUserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored, err := s.ratings.RatingByID(ctx, id)
	if err != nil {
		return err
	}
	if stored.UserID == likingUserID {
		return store.ErrSelfLike
	}

	return s.ratings.AddLike(ctx, id, likingUserID)
}

// Unlike withdraws a previously recorded like.
func (s *service) Unlike(ctx context.Context, id, likingUserID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.ratings.RatingByID(ctx, id); err != nil {
		return err
	}
	return s.ratings.RemoveLike(ctx, id, likingUserID)
}

func (s *service) ownedRating(ctx context.Context, id, actingUserID int64) (models.Rating, error) {
	stored, err := s.ratings.RatingByID(ctx, id)
	if err != nil {
		return models.Rating{}, err
	}
	if stored.UserID != actingUserID {
		return models.Rating{}, store.ErrRatingNotOwned
	}
	return stored, nil
}

func validateStars(stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: stars must be between 1 and 5", store.ErrInvalidRating)
	}
	return nil
}
