package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"mediashelf/shared/go/models"
)

func TestCreateMediaSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO media (title, description, media_type, release_year, age_restriction, genres, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)).
		WithArgs("The Wire", "Baltimore.", "series", 2002, "16", pq.Array([]string{"Crime", "Drama"}), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	got, err := s.CreateMedia(context.Background(), models.Media{
		Title:          "The Wire",
		Description:    "Baltimore.",
		MediaType:      "series",
		ReleaseYear:    2002,
		AgeRestriction: "16",
		Genres:         []string{"Crime", "Drama"},
		CreatedBy:      7,
	})
	if err != nil {
		t.Fatalf("CreateMedia error: %v", err)
	}

	if got.ID != 12 {
		t.Fatalf("expected media ID 12, got %d", got.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMediaByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, title, description, media_type, release_year, age_restriction, genres, created_by
		FROM media
		WHERE id = $1
	`)).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.MediaByID(context.Background(), 999)
	if !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListMedia(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, title, description, media_type, release_year, age_restriction, genres, created_by
		FROM media
		ORDER BY id ASC
	`)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "media_type", "release_year", "age_restriction", "genres", "created_by",
		}).
			AddRow(int64(1), "Dune", "Desert planet.", "book", 1965, "12", []byte(`{"Science Fiction"}`), int64(7)).
			AddRow(int64(2), "Hades", "Underworld runs.", "game", 2020, "12", []byte(`{Roguelike,Action}`), int64(7)))

	media, err := s.ListMedia(context.Background())
	if err != nil {
		t.Fatalf("ListMedia error: %v", err)
	}

	if len(media) != 2 || media[0].Title != "Dune" || media[1].Title != "Hades" {
		t.Fatalf("unexpected media: %#v", media)
	}
	if len(media[1].Genres) != 2 || media[1].Genres[0] != "Roguelike" {
		t.Fatalf("unexpected genres: %#v", media[1].Genres)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateMediaNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE media
		SET title = $2, description = $3, media_type = $4, release_year = $5, age_restriction = $6, genres = $7
		WHERE id = $1
	`)).
		WithArgs(int64(5), "Renamed", "", "movie", 2010, "", pq.Array([]string(nil))).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.UpdateMedia(context.Background(), models.Media{
		ID:          5,
		Title:       "Renamed",
		MediaType:   "movie",
		ReleaseYear: 2010,
	})
	if !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteMedia(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM media
		WHERE id = $1
	`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DeleteMedia(context.Background(), 3); err != nil {
		t.Fatalf("DeleteMedia error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
