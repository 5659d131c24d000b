package store

import (
	"context"
	"fmt"
	"time"
)

// AddFavorite bookmarks a media entry for a user. The (user_id, media_id)
// primary key rejects duplicates at write time.
func (s *Store) AddFavorite(ctx context.Context, userID, mediaID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, media_id, created_at)
		VALUES ($1, $2, $3)
	`, userID, mediaID, time.Now().UTC()); err != nil {
		if isUniqueViolation(err) {
			return ErrFavoriteExists
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// RemoveFavorite drops a bookmark.
func (s *Store) RemoveFavorite(ctx context.Context, userID, mediaID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE user_id = $1 AND media_id = $2
	`, userID, mediaID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

// IsFavorite reports whether the user bookmarked the media entry.
func (s *Store) IsFavorite(ctx context.Context, userID, mediaID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND media_id = $2)
	`, userID, mediaID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

// FavoriteMediaIDs lists the user's bookmarked media ids, oldest first.
func (s *Store) FavoriteMediaIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT media_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at ASC, media_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select favorites: %w", err)
	}
	defer rows.Close()

	var mediaIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		mediaIDs = append(mediaIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return mediaIDs, nil
}

// CountFavoritesForMedia counts how many users bookmarked the media entry.
func (s *Store) CountFavoritesForMedia(ctx context.Context, mediaID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM favorites
		WHERE media_id = $1
	`, mediaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}
