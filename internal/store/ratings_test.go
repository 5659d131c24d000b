package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"mediashelf/shared/go/models"
)

func TestCreateRatingSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO ratings (media_id, user_id, stars, comment, comment_confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)).
		WithArgs(int64(1), int64(7), 5, "Great.", false, createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(33)))

	got, err := s.CreateRating(context.Background(), models.Rating{
		MediaID:   1,
		UserID:    7,
		Stars:     5,
		Comment:   "Great.",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreateRating error: %v", err)
	}

	if got.ID != 33 {
		t.Fatalf("expected rating ID 33, got %d", got.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRatingDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO ratings (media_id, user_id, stars, comment, comment_confirmed, created_at)
	`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = s.CreateRating(context.Background(), models.Rating{MediaID: 1, UserID: 7, Stars: 4})
	if !errors.Is(err, ErrDuplicateRating) {
		t.Fatalf("expected ErrDuplicateRating, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRatingByIDIncludesLikes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(ratingSelect)).
		WithArgs(int64(33)).
		WillReturnRows(ratingRows().
			AddRow(int64(33), int64(1), int64(7), 5, "Great.", true, time.Now(), []byte(`{2,9}`)))

	rating, err := s.RatingByID(context.Background(), 33)
	if err != nil {
		t.Fatalf("RatingByID error: %v", err)
	}

	if len(rating.LikedBy) != 2 || rating.LikedBy[0] != 2 || rating.LikedBy[1] != 9 {
		t.Fatalf("unexpected likes: %#v", rating.LikedBy)
	}
	if !rating.CommentConfirmed {
		t.Fatalf("expected confirmed comment")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRatingByMediaAndUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(ratingSelect)).
		WithArgs(int64(1), int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.RatingByMediaAndUser(context.Background(), 1, 7)
	if !errors.Is(err, ErrRatingNotFound) {
		t.Fatalf("expected ErrRatingNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSummarizeByMediaIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT media_id, AVG(stars), COUNT(*)
		FROM ratings
		WHERE media_id = ANY($1)
		GROUP BY media_id
	`)).
		WithArgs(pq.Array([]int64{1, 2})).
		WillReturnRows(sqlmock.NewRows([]string{"media_id", "avg", "count"}).
			AddRow(int64(1), 4.5, 2).
			AddRow(int64(2), 3.0, 1))

	summaries, err := s.SummarizeByMediaIDs(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("SummarizeByMediaIDs error: %v", err)
	}

	if len(summaries) != 2 || summaries[0].AverageScore != 4.5 || summaries[1].RatingCount != 1 {
		t.Fatalf("unexpected summaries: %#v", summaries)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRatingCountsPerUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id, COUNT(*) AS rating_count
		FROM ratings
		GROUP BY user_id
		ORDER BY rating_count DESC, user_id ASC
		LIMIT $1
	`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "rating_count"}).
			AddRow(int64(7), int64(10)))

	counts, err := s.RatingCountsPerUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("RatingCountsPerUser error: %v", err)
	}

	if len(counts) != 1 || counts[0].UserID != 7 || counts[0].RatingCount != 10 {
		t.Fatalf("unexpected counts: %#v", counts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmCommentNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE ratings
		SET comment_confirmed = TRUE
		WHERE id = $1
	`)).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.ConfirmComment(context.Background(), 404); !errors.Is(err, ErrRatingNotFound) {
		t.Fatalf("expected ErrRatingNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddLikeConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO rating_likes (rating_id, user_id)
		VALUES ($1, $2)
	`)).
		WithArgs(int64(33), int64(2)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := s.AddLike(context.Background(), 33, 2); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveLikeNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM rating_likes
		WHERE rating_id = $1 AND user_id = $2
	`)).
		WithArgs(int64(33), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.RemoveLike(context.Background(), 33, 2); !errors.Is(err, ErrLikeNotFound) {
		t.Fatalf("expected ErrLikeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func ratingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "media_id", "user_id", "stars", "comment", "comment_confirmed", "created_at", "array",
	})
}
