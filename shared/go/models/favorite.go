package models

import "time"

// Favorite is a user-to-media bookmark. The (UserID, MediaID) pair is the
// identity; existence of the row is the fact.
type Favorite struct {
	UserID    int64     `json:"userId"`
	MediaID   int64     `json:"mediaId"`
	CreatedAt time.Time `json:"createdAt"`
}
