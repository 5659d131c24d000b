package main

import (
	"net/http"
	"strings"

	"mediashelf/internal/app/media"
	"mediashelf/internal/app/profiles"
	"mediashelf/internal/app/ratings"
	"mediashelf/internal/app/users"
	"mediashelf/internal/auth"
	"mediashelf/internal/httpapi"
	"mediashelf/internal/store"
	"mediashelf/shared/go/config"
	"mediashelf/shared/go/middleware"
)

func newHTTPHandler(cfg config.Config, dataStore *store.Store) http.Handler {
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, auth.DefaultTokenTTL)

	// Base services
	userSvc := users.New(dataStore, tokens)
	mediaSvc := media.New(dataStore, dataStore, dataStore)
	ratingsSvc := ratings.New(dataStore, dataStore)

	// Profile aggregation depends on the media service for favorite details.
	profileSvc := profiles.New(dataStore, dataStore, dataStore, mediaSvc)

	handler := httpapi.New(userSvc, mediaSvc, ratingsSvc, profileSvc).Routes()
	handler = withCORS(cfg.CORS.AllowedOrigins, handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.Recovery()(handler)
	return handler
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
