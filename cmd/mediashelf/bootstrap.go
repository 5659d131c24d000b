package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mediashelf/internal/auth"
	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// bootstrapDemoData seeds a demo account and a small catalog so a fresh
// instance is browsable immediately. Seeding is idempotent and skipped
// entirely when migrations have not run yet.
func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	mediaTableExists, err := tableExists(ctx, db, "media")
	if err != nil {
		return fmt.Errorf("check media table: %w", err)
	}
	if !mediaTableExists {
		return nil
	}

	demoUser, err := ensureDemoUser(ctx, dataStore)
	if err != nil {
		return err
	}
	return ensureDemoCatalog(ctx, dataStore, demoUser.ID)
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) (models.User, error) {
	const username = "demo"

	hash, err := auth.HashPassword("demo123")
	if err != nil {
		return models.User{}, fmt.Errorf("hash demo password: %w", err)
	}

	user, err := dataStore.CreateUser(ctx, models.User{Username: username, PasswordHash: hash})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserExists) {
		return models.User{}, fmt.Errorf("bootstrap demo user: %w", err)
	}
	return dataStore.UserByUsername(ctx, username)
}

func ensureDemoCatalog(ctx context.Context, dataStore *store.Store, userID int64) error {
	existing, err := dataStore.ListMedia(ctx)
	if err != nil {
		return fmt.Errorf("list media: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	type seedEntry struct {
		media     models.Media
		stars     int
		comment   string
		favorited bool
	}

	entries := []seedEntry{
		{
			media: models.Media{
				Title:          "The Wire",
				Description:    "Baltimore from every side of the law.",
				MediaType:      "series",
				ReleaseYear:    2002,
				AgeRestriction: "16",
				Genres:         []string{"Crime", "Drama"},
			},
			stars:     5,
			comment:   "Still the benchmark.",
			favorited: true,
		},
		{
			media: models.Media{
				Title:          "Spirited Away",
				Description:    "A girl wanders into a world of spirits.",
				MediaType:      "movie",
				ReleaseYear:    2001,
				AgeRestriction: "6",
				Genres:         []string{"Animation", "Fantasy"},
			},
			stars:     5,
			comment:   "Beautiful in every frame.",
			favorited: true,
		},
		{
			media: models.Media{
				Title:          "Dune",
				Description:    "Desert planet, spice, prophecy.",
				MediaType:      "book",
				ReleaseYear:    1965,
				AgeRestriction: "12",
				Genres:         []string{"Science Fiction"},
			},
			stars:     4,
			comment:   "Dense but rewarding.",
			favorited: false,
		},
		{
			media: models.Media{
				Title:          "Hades",
				Description:    "Escaping the underworld, one run at a time.",
				MediaType:      "game",
				ReleaseYear:    2020,
				AgeRestriction: "12",
				Genres:         []string{"Roguelike", "Action"},
			},
			stars:     4,
			comment:   "",
			favorited: false,
		},
		{
			media: models.Media{
				Title:          "Chernobyl",
				Description:    "The cost of lies.",
				MediaType:      "series",
				ReleaseYear:    2019,
				AgeRestriction: "16",
				Genres:         []string{"Drama", "History"},
			},
		},
	}

	for _, entry := range entries {
		entry.media.CreatedBy = userID
		created, err := dataStore.CreateMedia(ctx, entry.media)
		if err != nil {
			return fmt.Errorf("insert demo media %q: %w", entry.media.Title, err)
		}

		if entry.stars > 0 {
			if _, err := dataStore.CreateRating(ctx, models.Rating{
				MediaID:   created.ID,
				UserID:    userID,
				Stars:     entry.stars,
				Comment:   entry.comment,
				CreatedAt: time.Now().UTC(),
			}); err != nil && !errors.Is(err, store.ErrDuplicateRating) {
				return fmt.Errorf("insert demo rating for %q: %w", entry.media.Title, err)
			}
		}

		if entry.favorited {
			if err := dataStore.AddFavorite(ctx, userID, created.ID); err != nil && !errors.Is(err, store.ErrFavoriteExists) {
				return fmt.Errorf("insert demo favorite for %q: %w", entry.media.Title, err)
			}
		}
	}

	return nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
