package models

import "time"

// Rating is a single user's verdict on a media entry. At most one Rating
// exists per (MediaID, UserID) pair.
type Rating struct {
	ID               int64     `json:"id"`
	MediaID          int64     `json:"mediaId"`
	UserID           int64     `json:"userId"`
	Stars            int       `json:"stars"` // 1..5
	Comment          string    `json:"comment,omitempty"`
	CommentConfirmed bool      `json:"commentConfirmed"`
	CreatedAt        time.Time `json:"createdAt"`
	LikedBy          []int64   `json:"likedBy,omitempty"`
}

// RatingSummary aggregates the ratings of one media entry. Derived on demand,
// never stored.
type RatingSummary struct {
	MediaID      int64   `json:"mediaId"`
	AverageScore float64 `json:"averageScore"`
	RatingCount  int     `json:"ratingCount"`
}

// UserRatingCount pairs a user with the number of ratings they authored.
type UserRatingCount struct {
	UserID      int64 `json:"userId"`
	RatingCount int64 `json:"ratingCount"`
}
