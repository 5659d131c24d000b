package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mediashelf/shared/go/models"
)

// CreateRating inserts a new rating and returns it with the assigned id.
// The unique (media_id, user_id) constraint closes the duplicate-rating race.
func (s *Store) CreateRating(ctx context.Context, rating models.Rating) (models.Rating, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ratings (media_id, user_id, stars, comment, comment_confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rating.MediaID, rating.UserID, rating.Stars, rating.Comment, rating.CommentConfirmed, rating.CreatedAt).Scan(&rating.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Rating{}, ErrDuplicateRating
		}
		return models.Rating{}, fmt.Errorf("insert rating: %w", err)
	}
	return rating, nil
}

// RatingByID returns a single rating including the set of users who liked it.
func (s *Store) RatingByID(ctx context.Context, id int64) (models.Rating, error) {
	row := s.db.QueryRowContext(ctx, ratingSelect+`
		WHERE r.id = $1
	`, id)

	rating, err := scanRatingRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, ErrRatingNotFound
		}
		return models.Rating{}, err
	}
	return rating, nil
}

// RatingByMediaAndUser returns the rating a user gave a media entry, if any.
func (s *Store) RatingByMediaAndUser(ctx context.Context, mediaID, userID int64) (models.Rating, error) {
	row := s.db.QueryRowContext(ctx, ratingSelect+`
		WHERE r.media_id = $1 AND r.user_id = $2
	`, mediaID, userID)

	rating, err := scanRatingRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, ErrRatingNotFound
		}
		return models.Rating{}, err
	}
	return rating, nil
}

// RatingsByMedia lists the ratings of one media entry in creation order.
func (s *Store) RatingsByMedia(ctx context.Context, mediaID int64) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx, ratingSelect+`
		WHERE r.media_id = $1
		ORDER BY r.id ASC
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	return collectRatings(rows)
}

// RatingsByUser lists every rating authored by a user in creation order.
func (s *Store) RatingsByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx, ratingSelect+`
		WHERE r.user_id = $1
		ORDER BY r.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	return collectRatings(rows)
}

// UpdateRating overwrites stars, comment and the confirmation flag.
func (s *Store) UpdateRating(ctx context.Context, rating models.Rating) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ratings
		SET stars = $2, comment = $3, comment_confirmed = $4
		WHERE id = $1
	`, rating.ID, rating.Stars, rating.Comment, rating.CommentConfirmed)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// DeleteRating removes a rating and its likes.
func (s *Store) DeleteRating(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// SummarizeByMediaIDs computes average score and count per media id. Media
// without ratings produce no summary.
func (s *Store) SummarizeByMediaIDs(ctx context.Context, mediaIDs []int64) ([]models.RatingSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_id, AVG(stars), COUNT(*)
		FROM ratings
		WHERE media_id = ANY($1)
		GROUP BY media_id
	`, pq.Array(mediaIDs))
	if err != nil {
		return nil, fmt.Errorf("summarize ratings: %w", err)
	}
	defer rows.Close()

	var summaries []models.RatingSummary
	for rows.Next() {
		var summary models.RatingSummary
		if err := rows.Scan(&summary.MediaID, &summary.AverageScore, &summary.RatingCount); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}

	return summaries, nil
}

// RatingCountsPerUser returns the top raters, pre-sorted by count descending.
// Users without ratings never appear.
func (s *Store) RatingCountsPerUser(ctx context.Context, limit int) ([]models.UserRatingCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) AS rating_count
		FROM ratings
		GROUP BY user_id
		ORDER BY rating_count DESC, user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("count ratings per user: %w", err)
	}
	defer rows.Close()

	var counts []models.UserRatingCount
	for rows.Next() {
		var count models.UserRatingCount
		if err := rows.Scan(&count.UserID, &count.RatingCount); err != nil {
			return nil, fmt.Errorf("scan rating count: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating counts: %w", err)
	}

	return counts, nil
}

// ConfirmComment marks the rating's comment as confirmed.
func (s *Store) ConfirmComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ratings
		SET comment_confirmed = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("confirm comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// AddLike records that a user liked a rating. The primary key on
// (rating_id, user_id) makes double likes a conflict, not a duplicate row.
func (s *Store) AddLike(ctx context.Context, ratingID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO rating_likes (rating_id, user_id)
		VALUES ($1, $2)
	`, ratingID, userID); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// RemoveLike withdraws a user's like from a rating.
func (s *Store) RemoveLike(ctx context.Context, ratingID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM rating_likes
		WHERE rating_id = $1 AND user_id = $2
	`, ratingID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrLikeNotFound
	}

	return nil
}

// Likes returns the ids of users who liked a rating.
func (s *Store) Likes(ctx context.Context, ratingID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id
		FROM rating_likes
		WHERE rating_id = $1
		ORDER BY user_id ASC
	`, ratingID)
	if err != nil {
		return nil, fmt.Errorf("select likes: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return userIDs, nil
}

const ratingSelect = `
		SELECT r.id, r.media_id, r.user_id, r.stars, r.comment, r.comment_confirmed, r.created_at,
			ARRAY(SELECT l.user_id FROM rating_likes l WHERE l.rating_id = r.id ORDER BY l.user_id)
		FROM ratings r
`

func scanRatingRow(scanner rowScanner) (models.Rating, error) {
	var r models.Rating
	if err := scanner.Scan(&r.ID, &r.MediaID, &r.UserID, &r.Stars, &r.Comment, &r.CommentConfirmed, &r.CreatedAt, pq.Array(&r.LikedBy)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, err
		}
		return models.Rating{}, fmt.Errorf("scan rating: %w", err)
	}
	return r, nil
}

func collectRatings(rows *sql.Rows) ([]models.Rating, error) {
	var ratings []models.Rating
	for rows.Next() {
		r, err := scanRatingRow(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}
