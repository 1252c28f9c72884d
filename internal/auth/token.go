package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// TokenManager supplies bearer tokens to the request layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// PerCallFetcher is implemented by managers whose GetToken fetches a new
// token on every call.
type PerCallFetcher interface {
	FetchesPerCall() bool
}

// NeedsRefresh reports whether tm must be refreshed before retrying a
// rejected request. A per-call manager hands out a new token anyway, so an
// explicit refresh would only fetch one that is thrown away.
func NeedsRefresh(tm TokenManager) bool {
	fetcher, ok := tm.(PerCallFetcher)

	return !ok || !fetcher.FetchesPerCall()
}

// AuthToken is one token fetched from the token endpoint.
type AuthToken struct {
	Value      string    `json:"token"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Valid reports whether the token carries a value.
func (t *AuthToken) Valid() bool {
	return t != nil && t.Value != ""
}

// AuthHeader formats a token as an Authorization header value.
func AuthHeader(ctx context.Context, tm TokenManager) (string, error) {
	token, err := tm.GetToken(ctx)
	if err != nil {
		return "", err
	}

	return "Bearer " + token, nil
}

// StaticTokenManager always returns the same token.
type StaticTokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewStaticTokenManager creates a manager for a pre-issued token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the static token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, nil
}

// RefreshToken fails: a static token has no source to refresh from.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return caseapi.ErrStaticTokenNoRefresh
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}
