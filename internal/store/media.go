package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mediashelf/shared/go/models"
)

// CreateMedia inserts a new catalog entry and returns it with the assigned id.
func (s *Store) CreateMedia(ctx context.Context, media models.Media) (models.Media, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO media (title, description, media_type, release_year, age_restriction, genres, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, media.Title, media.Description, media.MediaType, media.ReleaseYear, media.AgeRestriction, pq.Array(media.Genres), media.CreatedBy).Scan(&media.ID)
	if err != nil {
		return models.Media{}, fmt.Errorf("insert media: %w", err)
	}
	return media, nil
}

// MediaByID returns a single catalog entry by its identifier.
func (s *Store) MediaByID(ctx context.Context, id int64) (models.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, media_type, release_year, age_restriction, genres, created_by
		FROM media
		WHERE id = $1
	`, id)

	media, err := scanMediaRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Media{}, ErrMediaNotFound
		}
		return models.Media{}, err
	}
	return media, nil
}

// ListMedia returns the whole catalog in creation order.
func (s *Store) ListMedia(ctx context.Context) ([]models.Media, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, media_type, release_year, age_restriction, genres, created_by
		FROM media
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select media: %w", err)
	}
	defer rows.Close()

	media, err := scanMediaRows(rows)
	if err != nil {
		return nil, err
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}

	return media, nil
}

// UpdateMedia overwrites the stored fields of an existing entry.
func (s *Store) UpdateMedia(ctx context.Context, media models.Media) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE media
		SET title = $2, description = $3, media_type = $4, release_year = $5, age_restriction = $6, genres = $7
		WHERE id = $1
	`, media.ID, media.Title, media.Description, media.MediaType, media.ReleaseYear, media.AgeRestriction, pq.Array(media.Genres))
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

// DeleteMedia removes a catalog entry. Ratings and favorites cascade.
func (s *Store) DeleteMedia(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM media
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrMediaNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaRow(scanner rowScanner) (models.Media, error) {
	var m models.Media
	if err := scanner.Scan(&m.ID, &m.Title, &m.Description, &m.MediaType, &m.ReleaseYear, &m.AgeRestriction, pq.Array(&m.Genres), &m.CreatedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Media{}, err
		}
		return models.Media{}, fmt.Errorf("scan media: %w", err)
	}
	return m, nil
}

func scanMediaRows(rows *sql.Rows) ([]models.Media, error) {
	var media []models.Media
	for rows.Next() {
		m, err := scanMediaRow(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, nil
}
