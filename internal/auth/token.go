// Package auth holds the token and password components the user workflows
// build on. Tokens are signed JWTs; invalidation is tracked in a process-wide
// revocation set so a logout takes effect before the token expires.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates an expired, malformed or revoked token.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// TokenManager issues and validates signed session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> expiry, pruned lazily
}

// NewTokenManager creates a TokenManager signing with the given secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a fresh token for the user. Each token carries a unique id, so
// two tokens issued for the same user never collide.
func (m *TokenManager) Issue(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry and revocation, returning the user id the
// token was issued for.
func (m *TokenManager) Validate(tokenString string) (int64, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	_, revoked := m.revoked[claims.ID]
	m.prune(time.Now().UTC())
	m.mu.Unlock()
	if revoked {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// Invalidate revokes a token. Unknown or already-expired tokens are a no-op.
func (m *TokenManager) Invalidate(tokenString string) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return
	}

	m.mu.Lock()
	m.revoked[claims.ID] = claims.ExpiresAt.Time
	m.prune(time.Now().UTC())
	m.mu.Unlock()
}

func (m *TokenManager) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// prune drops revocation entries whose tokens have expired anyway. Callers
// must hold the mutex.
func (m *TokenManager) prune(now time.Time) {
	for id, expiry := range m.revoked {
		if expiry.Before(now) {
			delete(m.revoked, id)
		}
	}
}
