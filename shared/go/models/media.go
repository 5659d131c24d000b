package models

// Media is a catalog entry contributed by a user.
type Media struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	MediaType      string   `json:"mediaType"` // e.g. "Movie", "Game"
	ReleaseYear    int      `json:"releaseYear"`
	AgeRestriction string   `json:"ageRestriction,omitempty"`
	Genres         []string `json:"genres"`
	CreatedBy      int64    `json:"createdBy"`
}

// SearchCriteria constrains catalog searches. Zero-valued fields impose no
// constraint.
type SearchCriteria struct {
	TitleQuery    string  `json:"titleQuery,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	MinimumRating float64 `json:"minimumRating,omitempty"`
}

// MediaDetails is the read-only composite view of a catalog entry: the entry
// itself plus live-computed rating and favorite figures for the requesting
// user. It is assembled per query and never persisted.
type MediaDetails struct {
	Media           Media    `json:"media"`
	AverageRating   float64  `json:"averageRating"`
	RatingCount     int      `json:"ratingCount"`
	FavoritesCount  int      `json:"favoritesCount"`
	FavoriteForUser bool     `json:"favoriteForUser"`
	Ratings         []Rating `json:"ratings"`
}
