package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoAccessToken        = errors.New("no access token configured")
	ErrTokenNotRefreshable  = errors.New("private app tokens cannot be refreshed")
	ErrAccessTokenExpiredAt = errors.New("access token expired")
)

// expiryBuffer treats a token as expired slightly before it really is.
const expiryBuffer = 30 * time.Second

// TokenManager supplies the bearer token for API requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is an access token with an optional expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Valid reports whether the token is usable. A zero ExpiresAt never expires.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds a token for concurrent use.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set stores a token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// StaticTokenManager serves a private app access token. Private app tokens
// do not expire on their own, so there is nothing to refresh.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a token manager for a private app token.
func NewStaticTokenManager(accessToken string) *StaticTokenManager {
	store := NewTokenStore()
	if accessToken != "" {
		store.Set(&Token{AccessToken: accessToken, TokenType: "bearer"})
	}

	return &StaticTokenManager{store: store}
}

// GetToken returns the access token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token == nil {
		return "", ErrNoAccessToken
	}

	if !token.Valid() {
		return "", ErrAccessTokenExpiredAt
	}

	return token.AccessToken, nil
}

// RefreshToken always fails; a rotated token has to be set explicitly.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrTokenNotRefreshable
}

// SetToken replaces the access token, for example after a rotation.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "bearer", ExpiresAt: expiresAt})
}
