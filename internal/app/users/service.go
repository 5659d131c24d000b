package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediashelf/internal/auth"
	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// UserStore describes the persistence operations required by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// TokenIssuer is the token lifecycle the service drives on login and logout.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	Validate(token string) (int64, error)
	Invalidate(token string)
}

// Service exposes account registration, login and token resolution.
type Service interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (models.User, error)
}

type service struct {
	store  UserStore
	tokens TokenIssuer
}

// New wires a Service backed by the provided store and token manager.
func New(store UserStore, tokens TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

// Register creates an account with a hashed password. Blank credentials and
// taken usernames are rejected.
func (s *service) Register(ctx context.Context, username, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", store.ErrInvalidUser)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	return s.store.CreateUser(ctx, models.User{Username: username, PasswordHash: hash})
}

// Login verifies credentials and issues a session token. An unknown username
// still burns a hash comparison so the failure timing stays uniform.
func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			auth.CompareDummy(password)
			return "", store.ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", store.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("create token: %w", err)
	}
	return token, nil
}

// Logout invalidates the session token.
func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tokens.Invalidate(token)
	return nil
}

// UserByToken resolves the account a valid token was issued for.
func (s *service) UserByToken(ctx context.Context, token string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	userID, err := s.tokens.Validate(token)
	if err != nil {
		return models.User{}, store.ErrUnauthorized
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, store.ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}
