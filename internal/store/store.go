package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidMedia indicates validation failure for media data.
	ErrInvalidMedia = errors.New("invalid media")
	// ErrMediaNotFound signals a missing media record.
	ErrMediaNotFound = errors.New("media not found")

	// ErrInvalidRating indicates a star value outside 1..5.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrRatingNotFound signals a missing rating record.
	ErrRatingNotFound = errors.New("rating not found")
	// ErrDuplicateRating signals the user already rated this media.
	ErrDuplicateRating = errors.New("rating already exists for this media and user")
	// ErrRatingNotOwned signals an ownership mismatch on a rating mutation.
	ErrRatingNotOwned = errors.New("rating belongs to another user")
	// ErrCommentMissing signals a confirmation attempt on a blank comment.
	ErrCommentMissing = errors.New("rating has no comment to confirm")
	// ErrSelfLike signals a user liking their own rating.
	ErrSelfLike = errors.New("cannot like own rating")
	// ErrAlreadyLiked signals a duplicate like by the same user.
	ErrAlreadyLiked = errors.New("rating already liked by this user")
	// ErrLikeNotFound signals an unlike without a prior like.
	ErrLikeNotFound = errors.New("like not found")

	// ErrFavoriteExists signals the media is already in the user's favorites.
	ErrFavoriteExists = errors.New("favorite already exists")
	// ErrFavoriteNotFound signals the media is not in the user's favorites.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrInvalidUser indicates validation failure for account data.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound signals a missing user record.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates an invalid or missing token.
	ErrUnauthorized = errors.New("unauthorized")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
