package models

import "time"

// User is an account that can contribute media, ratings and favorites.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserProfile is the aggregate view over a user's contributions.
type UserProfile struct {
	UserID         int64   `json:"userId"`
	TotalRatings   int     `json:"totalRatings"`
	AverageRating  float64 `json:"averageRating"`
	FavoriteGenre  string  `json:"favoriteGenre,omitempty"`
	FavoritesCount int     `json:"favoritesCount"`
}

// LeaderboardEntry is one row of the public leaderboard, ranked by the number
// of ratings a user has authored.
type LeaderboardEntry struct {
	Username    string `json:"username"`
	RatingCount int64  `json:"ratingCount"`
}
